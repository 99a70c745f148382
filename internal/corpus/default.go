package corpus

// DefaultFAQ is the built-in campus survival guide, used when no corpus file
// or database entry is configured. Each topic has an English and a Spanish
// question sharing one answer.
const DefaultFAQ = `
Q: Where is Lambton College Ottawa located?
Q: ¿Dónde está ubicado Lambton College Ottawa?
A: Lambton College Ottawa is located at 223 Main Street, Ottawa, ON K1S 1C4, on the Saint Paul University campus in the heart of Canada's capital.

Q: How much does student housing cost in Ottawa?
Q: ¿Cuánto cuesta el alojamiento estudiantil en Ottawa?
A: On-campus residence typically costs between $800-$1200 per month including utilities. Off-campus shared apartments range from $600-$900 per month per room.

Q: How does public transportation work in Ottawa for students?
Q: ¿Cómo funciona el transporte público en Ottawa para estudiantes?
A: Ottawa uses OC Transpo buses and O-Train light rail. Students can get a U-Pass for approximately $229 per term. You'll need a Presto card which costs $4.

Q: Where are the cheapest grocery stores for students in Ottawa?
Q: ¿Dónde están los supermercados más baratos para estudiantes en Ottawa?
A: The most affordable grocery stores are No Frills, Food Basics (10% student discount on select days), Walmart, and FreshCo. Avoid Metro and Loblaws as they're more expensive.

Q: Can I work while studying at Lambton College Ottawa?
Q: ¿Puedo trabajar mientras estudio en Lambton College Ottawa?
A: Yes! International students can work off-campus up to 24 hours per week during academic sessions. You can work full-time during scheduled breaks.

Q: What is UHIP and do I need it as an international student?
Q: ¿Qué es UHIP y lo necesito como estudiante internacional?
A: UHIP is mandatory health insurance for international students in Ontario. It covers doctor visits, emergency care, and hospitalization. Your college automatically enrolls you.
`
