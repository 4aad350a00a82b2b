package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Text(t *testing.T) {
	s := NewSanitizer()

	assert.Equal(t, "Ann", s.Text("  Ann "))
	assert.Equal(t, "Ann & Bob", s.Text("Ann & Bob"))
	assert.Equal(t, "Ann", s.Text("<b>Ann</b>"))
	assert.Equal(t, "", s.Text("<script>alert(1)</script>"))
	assert.Equal(t, "Tbilisi, Rustaveli Ave 1", s.Text(`<a href="x">Tbilisi</a>, Rustaveli Ave 1`))
}
