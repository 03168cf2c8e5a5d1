package service

import (
	"context"
	"testing"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepot_CreerNomUnique(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	resp, err := f.depots.Creer(ctx, dto.DepotRequest{Nom: "Central"})
	require.NoError(t, err)
	assert.Equal(t, "Central", resp.Nom)

	_, err = f.depots.Creer(ctx, dto.DepotRequest{Nom: "Central"})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestDepot_ModifierGardeSonPropreNom(t *testing.T) {
	f := newFixture(fixtureOptions{})
	id := f.depot("Central")
	f.depot("Annexe")
	desc := "entrepôt principal"

	resp, err := f.depots.Modifier(context.Background(), id, dto.DepotRequest{Nom: "Central", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, &desc, resp.Description)

	_, err = f.depots.Modifier(context.Background(), id, dto.DepotRequest{Nom: "Annexe"})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestDepot_SupprimerFusionneDansLaDestination(t *testing.T) {
	f := newFixture(fixtureOptions{})
	central, annexe := f.depot("Central"), f.depot("Annexe")
	cable, disj := f.article("CAB-2.5", 0), f.article("DISJ-16", 0)
	f.stocker(cable, central, 5)
	f.stocker(cable, annexe, 3)
	f.stocker(disj, annexe, 2)

	require.NoError(t, f.depots.Supprimer(context.Background(), annexe, &central))

	assert.NotContains(t, f.s.depots, annexe)
	assert.Equal(t, 0, f.lignesDepot(annexe))
	assert.True(t, dec("8").Equal(f.qteDepot(cable, central)))
	assert.True(t, dec("2").Equal(f.qteDepot(disj, central)))
	assert.True(t, dec("8").Equal(f.s.articles[cable].Qte))
}

func TestDepot_SupprimerSansDestinationPerdLeStock(t *testing.T) {
	f := newFixture(fixtureOptions{})
	central, annexe := f.depot("Central"), f.depot("Annexe")
	cable := f.article("CAB-2.5", 0)
	f.stocker(cable, central, 5)
	f.stocker(cable, annexe, 3)

	require.NoError(t, f.depots.Supprimer(context.Background(), annexe, nil))

	assert.True(t, dec("5").Equal(f.s.articles[cable].Qte))
	require.NotEmpty(t, f.s.mouvements)
	last := f.s.mouvements[len(f.s.mouvements)-1]
	assert.Equal(t, model.MouvementSuppressionDepot, last.Type)
	assert.True(t, dec("-3").Equal(last.DeltaQte))
}

func TestDepot_SupprimerRefuseAvecTransfertEnCours(t *testing.T) {
	f := newFixture(fixtureOptions{})
	central, annexe := f.depot("Central"), f.depot("Annexe")
	cable := f.article("CAB-2.5", 0)
	f.stocker(cable, central, 5)
	tid := uuid.New()
	f.s.transferts[tid] = model.Transfert{
		ID: tid, Numero: "TR-0001/2025", Statut: model.TransfertEnCours,
		DepotSourceID: central, DepotDestinationID: annexe,
	}

	err := f.depots.Supprimer(context.Background(), annexe, &central)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.Contains(t, f.s.depots, annexe)

	err = f.depots.Supprimer(context.Background(), central, &central)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestDepot_SupprimerRefuseAvecTransfertTermine(t *testing.T) {
	f := newTransfertFixture()
	ctx := context.Background()
	resp, err := f.transferts.Creer(ctx, transfertReq(f.central, f.annexe, item(f.cable, "4")))
	require.NoError(t, err)
	require.Equal(t, model.TransfertTermine, resp.Statut)

	err = f.depots.Supprimer(ctx, f.annexe, &f.central)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict), "%v", err)
	assert.Contains(t, f.s.depots, f.annexe)
	assert.True(t, dec("6").Equal(f.qteDepot(f.cable, f.central)))
	assert.True(t, dec("4").Equal(f.qteDepot(f.cable, f.annexe)))

	// Cancelling afterwards credits the source exactly once.
	_, err = f.transferts.ChangerStatut(ctx, uuid.MustParse(resp.ID), model.TransfertAnnule)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(f.qteDepot(f.cable, f.central)))
	assert.True(t, dec("10").Equal(f.s.articles[f.cable].Qte))

	// A cancelled transfer still pins both depots.
	err = f.depots.Supprimer(ctx, f.annexe, nil)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	err = f.depots.Supprimer(ctx, f.central, &f.annexe)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.Contains(t, f.s.depots, f.central)
	assert.True(t, dec("10").Equal(f.s.articles[f.cable].Qte))
}

func TestDepot_Ajuster(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()
	central := f.depot("Central")
	cable := f.article("CAB-2.5", 0)

	resp, err := f.depots.Ajuster(ctx, central, dto.AjusterStockDepotRequest{ArticleID: cable.String(), Delta: dec("12")})
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(resp.Qte))
	assert.Equal(t, "CAB-2.5", resp.Reference)
	assert.True(t, dec("12").Equal(f.s.articles[cable].Qte))

	_, err = f.depots.Ajuster(ctx, central, dto.AjusterStockDepotRequest{ArticleID: cable.String(), Delta: dec("-13")})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.True(t, dec("12").Equal(f.qteDepot(cable, central)))

	_, err = f.depots.Ajuster(ctx, central, dto.AjusterStockDepotRequest{ArticleID: cable.String(), Delta: dec("0")})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	resp, err = f.depots.Ajuster(ctx, central, dto.AjusterStockDepotRequest{ArticleID: cable.String(), Delta: dec("-12")})
	require.NoError(t, err)
	assert.True(t, resp.Qte.IsZero())
	assert.False(t, f.ligneExiste(cable, central))
}

func TestDepot_StockSansCache(t *testing.T) {
	f := newFixture(fixtureOptions{})
	central := f.depot("Central")
	cable, disj := f.article("CAB-2.5", 0), f.article("DISJ-16", 0)
	f.stocker(cable, central, 5)
	f.stocker(disj, central, 1)

	resp, err := f.depots.Stock(context.Background(), central)
	require.NoError(t, err)
	assert.Equal(t, "Central", resp.Depot)
	assert.Len(t, resp.Lignes, 2)

	_, err = f.depots.Stock(context.Background(), uuid.New())
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
