package constants

import "strings"

// Category is the classification tag assigned to a parsed transaction.
type Category string

const (
	Supermercados     Category = "SUPERMERCADOS"
	Restaurantes      Category = "RESTAURANTES"
	Transporte        Category = "TRANSPORTE"
	Salud             Category = "SALUD"
	Entretenimiento   Category = "ENTRETENIMIENTO"
	ServiciosPublicos Category = "SERVICIOS"
	Tecnologia        Category = "TECNOLOGIA"
	Viajes            Category = "VIAJES"
	Educacion         Category = "EDUCACION"
	Hogar             Category = "HOGAR"
	Otros             Category = "OTROS"
)

// categoryBucket pairs a category with its merchant keywords.
type categoryBucket struct {
	Category Category
	Keywords []string
}

// categoryTable is scanned top to bottom and the first bucket with a
// matching keyword wins. Order is significant: do not sort or reshuffle,
// deterministic output depends on it.
var categoryTable = []categoryBucket{
	{Supermercados, []string{"supermercado", "mercado", "exito", "carulla", "olimpica", "jumbo", "tienda d1", "ara ", "makro"}},
	{Restaurantes, []string{"restaurante", "rappi", "mcdonald", "burger", "pizza", "cafe", "crepes", "kfc", "subway", "domino"}},
	{Transporte, []string{"uber", "didi", "cabify", "taxi", "gasolina", "terpel", "primax", "peaje", "parqueadero", "parking"}},
	{Salud, []string{"farmacia", "drogueria", "eps ", "clinica", "hospital", "laboratorio", "optica"}},
	{Entretenimiento, []string{"netflix", "spotify", "cine", "teatro", "steam", "playstation", "xbox", "hbo"}},
	{ServiciosPublicos, []string{"epm", "claro", "movistar", "tigo", "etb", "internet", "energia", "acueducto", "gas natural"}},
	{Tecnologia, []string{"apple", "samsung", "mercadolibre", "amazon", "alkosto", "ktronix"}},
	{Viajes, []string{"avianca", "latam", "wingo", "hotel", "airbnb", "booking", "despegar"}},
	{Educacion, []string{"universidad", "colegio", "curso", "udemy", "platzi", "libreria"}},
	{Hogar, []string{"homecenter", "ikea", "falabella", "ferreteria", "muebles"}},
}

// Classify returns the first matching category for a merchant string, or
// Otros when no keyword bucket matches.
func Classify(merchant string) Category {
	m := strings.ToLower(merchant)
	for _, bucket := range categoryTable {
		for _, kw := range bucket.Keywords {
			if strings.Contains(m, kw) {
				return bucket.Category
			}
		}
	}
	return Otros
}

// AllCategories returns the category tags in table order, Otros last.
func AllCategories() []Category {
	out := make([]Category, 0, len(categoryTable)+1)
	for _, b := range categoryTable {
		out = append(out, b.Category)
	}
	return append(out, Otros)
}
