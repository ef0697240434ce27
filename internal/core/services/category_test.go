package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/arkeo/internal/connectors"
	"github.com/custodia-labs/arkeo/internal/core/domain"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name  string
		types []domain.ContentType
		want  domain.ConnectorCategory
	}{
		{"museum", []domain.ContentType{domain.ContentTypeArtifact, domain.ContentTypeArtwork, domain.ContentTypeCoin}, domain.CategoryMuseums},
		{"media beats a single map", []domain.ContentType{domain.ContentTypePhoto, domain.ContentTypeMap, domain.ContentTypeVideo}, domain.CategoryMedia},
		{"maps", []domain.ContentType{domain.ContentTypeMap}, domain.CategoryMaps},
		{"models", []domain.ContentType{domain.ContentTypeModel3D}, domain.CategoryModels},
		{"texts", []domain.ContentType{domain.ContentTypeManuscript, domain.ContentTypeInscription}, domain.CategoryTexts},
		{"scholarship", []domain.ContentType{domain.ContentTypePaper, domain.ContentTypeBook, domain.ContentTypeDocument}, domain.CategoryScholarship},
		{"gazetteer", []domain.ContentType{domain.ContentTypePlace}, domain.CategoryGazetteers},
		{"tie goes to museums", []domain.ContentType{domain.ContentTypeCoin, domain.ContentTypePhoto}, domain.CategoryMuseums},
		{"nothing declared", nil, domain.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.types))
		})
	}
}

func TestCategorize_BuiltinConnectors(t *testing.T) {
	want := map[string]domain.ConnectorCategory{
		"metmuseum":     domain.CategoryMuseums,
		"europeana":     domain.CategoryMedia,
		"wikidata":      domain.CategoryGazetteers,
		"commons":       domain.CategoryMedia,
		"ads":           domain.CategoryScholarship,
		"britishmuseum": domain.CategoryMuseums,
	}

	for _, reg := range connectors.Builtin() {
		assert.Equal(t, want[reg.Info.ID], Categorize(reg.Info.ContentTypes), reg.Info.ID)
	}
}
