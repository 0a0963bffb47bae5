package model

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.Equal(t, true, ValidCategory(c))
	}

	assert.Equal(t, false, ValidCategory("clinical trials"))
	assert.Equal(t, false, ValidCategory("Breaking News"))
	assert.Equal(t, false, ValidCategory(""))
}

func TestCategoriesAreStable(t *testing.T) {
	assert.Equal(t, 6, len(Categories))
	assert.Equal(t, CategoryAcademicResearch, Categories[0])
	assert.Equal(t, CategoryHealthcarePolicy, Categories[5])
}
