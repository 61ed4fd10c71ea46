package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		merchant string
		want     Category
	}{
		{"SUPERMERCADO XYZ", Supermercados},
		{"EXITO CALLE 80", Supermercados},
		{"RAPPI RESTAURANTES", Restaurantes},
		{"UBER TRIP BOG", Transporte},
		{"DROGUERIA LA REBAJA", Salud},
		{"NETFLIX.COM", Entretenimiento},
		{"TIGO HOGAR", ServiciosPublicos},
		{"AMAZON MKTPLACE", Tecnologia},
		{"AVIANCA 134-2233", Viajes},
		{"UNIVERSIDAD NACIONAL", Educacion},
		{"HOMECENTER SUR", Hogar},
		{"NEGOCIO QWERTY", Otros},
		{"", Otros},
	}
	for _, tc := range cases {
		t.Run(tc.merchant, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.merchant))
		})
	}
}

func TestClassify_FirstBucketWins(t *testing.T) {
	// "SUPERMERCADO" sits in an earlier bucket than "internet"; table
	// order decides ties.
	assert.Equal(t, Supermercados, Classify("SUPERMERCADO INTERNET VENTAS"))
}

func TestAllCategories(t *testing.T) {
	cats := AllCategories()
	assert.Len(t, cats, len(categoryTable)+1)
	assert.Equal(t, Otros, cats[len(cats)-1])
	seen := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		_, dup := seen[c]
		assert.False(t, dup, "duplicate category %s", c)
		seen[c] = struct{}{}
	}
}
