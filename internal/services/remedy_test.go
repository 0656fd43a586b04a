package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ashram-app-server/internal/models"
)

func TestMergeTemplate(t *testing.T) {
	template := models.RemedyTemplate{
		Name:            "Gayatri Japa",
		Type:            models.RemedyTypeMantra,
		Category:        "daily practice",
		Instructions:    "Recite 108 times at sunrise",
		DefaultDosage:   "1 mala",
		DefaultDuration: "40 days",
	}
	template.ID = "tpl-1"

	t.Run("no overrides copies defaults", func(t *testing.T) {
		remedy := mergeTemplate(template, PrescriptionOverrides{})
		assert.Equal(t, "tpl-1", remedy.TemplateID)
		assert.Equal(t, "Gayatri Japa", remedy.Name)
		assert.Equal(t, models.RemedyTypeMantra, remedy.Type)
		assert.Equal(t, "Recite 108 times at sunrise", remedy.Instructions)
		assert.Equal(t, "1 mala", remedy.Dosage)
		assert.Equal(t, "40 days", remedy.Duration)
	})

	t.Run("overrides replace only their fields", func(t *testing.T) {
		remedy := mergeTemplate(template, PrescriptionOverrides{
			CustomDosage:   "2 malas",
			CustomDuration: "21 days",
		})
		assert.Equal(t, "Recite 108 times at sunrise", remedy.Instructions)
		assert.Equal(t, "2 malas", remedy.Dosage)
		assert.Equal(t, "21 days", remedy.Duration)
	})

	t.Run("template is not mutated", func(t *testing.T) {
		_ = mergeTemplate(template, PrescriptionOverrides{
			CustomInstructions: "Recite at sunset instead",
		})
		assert.Equal(t, "Recite 108 times at sunrise", template.Instructions)
	})
}
