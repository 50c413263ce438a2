package chatbot

import (
	"strings"

	"github.com/BradenHooton/frontdesk/pkg/dto"
)

type faqEntry struct {
	keywords []string
	answer   string
}

var faqs = []faqEntry{
	{
		keywords: []string{"kit consulting", "programa", "qué es", "que es"},
		answer: "KIT CONSULTING es un programa de ayudas del Gobierno de España para que las pymes " +
			"contraten servicios de asesoramiento en transformación digital. El bono cubre los " +
			"servicios de consultoría sin coste para la empresa.",
	},
	{
		keywords: []string{"requisito", "quién puede", "quien puede", "puedo solicitar", "empresa"},
		answer: "Pueden solicitarlo pequeñas y medianas empresas de entre 10 y 249 empleados, " +
			"al corriente de sus obligaciones tributarias y con la Seguridad Social, y que hayan " +
			"realizado el test de diagnóstico digital.",
	},
	{
		keywords: []string{"cuánto", "cuanto", "importe", "precio", "coste", "euros", "€"},
		answer: "Cada servicio de asesoramiento está subvencionado " + dto.ServiceGrantCap + ". " +
			"El importe total del bono depende del tamaño de la empresa.",
	},
	{
		keywords: []string{"inteligencia artificial", " ia ", "ventas", "estrategia", "servicio"},
		answer: "Ofrecemos asesoramiento en Inteligencia Artificial, Ventas Digitales y Estrategia y " +
			"Rendimiento de Negocio. Si quieres, puedo ayudarte a reservar una cita de consultoría: " +
			"solo escribe 'cita'.",
	},
	{
		keywords: []string{"solicitar", "solicitud", "proceso", "pasos", "cómo funciona", "como funciona"},
		answer: "El proceso es sencillo: te registras en Acelera pyme, eliges un asesor digital " +
			"adherido como nosotros y firmamos el acuerdo de prestación. Nosotros nos encargamos " +
			"del resto. ¿Quieres reservar una cita para empezar?",
	},
	{
		keywords: []string{"hola", "buenas", "buenos días", "buenos dias", "hello", " hi "},
		answer: "¡Hola! Soy el asistente virtual de KIT CONSULTING. Puedo explicarte el programa " +
			"de ayudas o ayudarte a reservar una cita. ¿En qué puedo ayudarte?",
	},
	{
		keywords: []string{"gracias", "thanks"},
		answer: "¡De nada! Si necesitas algo más, aquí estoy.",
	},
}

const fallbackAnswer = "Puedo informarte sobre el programa KIT CONSULTING, sus requisitos, " +
	"importes y servicios. Si prefieres hablar con un consultor, escribe 'cita' y te ayudo a reservar."

// answerFAQ returns the first canned answer whose keywords appear in msg.
func answerFAQ(msg string) string {
	lower := " " + strings.ToLower(msg) + " "
	for _, f := range faqs {
		for _, kw := range f.keywords {
			if strings.Contains(lower, kw) {
				return f.answer
			}
		}
	}
	return fallbackAnswer
}
