package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_MapsKinds(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Status(Validation("champ %s requis", "quantite")))
	assert.Equal(t, http.StatusNotFound, Status(NotFound("article introuvable")))
	assert.Equal(t, http.StatusBadRequest, Status(Conflict("déjà annulé")))
	assert.Equal(t, http.StatusServiceUnavailable, Status(Indisponible("file de travaux indisponible")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("connection reset")))
}

func TestStatus_Wrapped(t *testing.T) {
	err := fmt.Errorf("créer bon: %w", NotFound("fournisseur introuvable"))
	assert.Equal(t, http.StatusNotFound, Status(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindConflict))
}

func TestError_MessageFormatting(t *testing.T) {
	err := Validation("Stock insuffisant : disponible %s, demandé %s", "5", "20")
	assert.Equal(t, "Stock insuffisant : disponible 5, demandé 20", err.Error())
}
