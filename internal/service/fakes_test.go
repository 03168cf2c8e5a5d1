package service

import (
	"context"
	"sort"

	"gescom/internal/model"
	"gescom/internal/numerotation"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────
// memStore plays the database: repositories return copies and every write
// goes through a repository call, so a service that forgets to persist a
// change is caught. memTx snapshots the store and restores it when the
// callback fails.

type memStore struct {
	articles        map[uuid.UUID]model.Article
	mouvements      []model.MouvementStock
	depots          map[uuid.UUID]model.Depot
	stocks          map[uuid.UUID]model.StockDepot
	transferts      map[uuid.UUID]model.Transfert
	commandes       map[uuid.UUID]model.BonCommande
	receptions      map[uuid.UUID]model.BonReception
	commandesClient map[uuid.UUID]model.BonCommandeClient
	livraisons      map[uuid.UUID]model.BonLivraison
	fournisseurs    map[uuid.UUID]model.Fournisseur
	clients         map[uuid.UUID]model.Client
	clientsWebsite  map[uuid.UUID]model.ClientWebsite
}

func newMemStore() *memStore {
	return &memStore{
		articles:        map[uuid.UUID]model.Article{},
		depots:          map[uuid.UUID]model.Depot{},
		stocks:          map[uuid.UUID]model.StockDepot{},
		transferts:      map[uuid.UUID]model.Transfert{},
		commandes:       map[uuid.UUID]model.BonCommande{},
		receptions:      map[uuid.UUID]model.BonReception{},
		commandesClient: map[uuid.UUID]model.BonCommandeClient{},
		livraisons:      map[uuid.UUID]model.BonLivraison{},
		fournisseurs:    map[uuid.UUID]model.Fournisseur{},
		clients:         map[uuid.UUID]model.Client{},
		clientsWebsite:  map[uuid.UUID]model.ClientWebsite{},
	}
}

func cloneMap[V any](m map[uuid.UUID]V, cp func(V) V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		if cp != nil {
			v = cp(v)
		}
		out[k] = v
	}
	return out
}

func copyTransfert(t model.Transfert) model.Transfert {
	t.Items = append([]model.TransfertItem(nil), t.Items...)
	return t
}

func copyCommande(bc model.BonCommande) model.BonCommande {
	bc.Lignes = append([]model.BonCommandeLigne(nil), bc.Lignes...)
	return bc
}

func copyReception(br model.BonReception) model.BonReception {
	br.Lignes = append([]model.BonReceptionLigne(nil), br.Lignes...)
	return br
}

func copyCommandeClient(bc model.BonCommandeClient) model.BonCommandeClient {
	bc.Lignes = append([]model.BonCommandeClientLigne(nil), bc.Lignes...)
	return bc
}

func copyLivraison(bl model.BonLivraison) model.BonLivraison {
	bl.Lignes = append([]model.BonLivraisonLigne(nil), bl.Lignes...)
	return bl
}

func (s *memStore) clone() *memStore {
	return &memStore{
		articles:        cloneMap(s.articles, nil),
		mouvements:      append([]model.MouvementStock(nil), s.mouvements...),
		depots:          cloneMap(s.depots, nil),
		stocks:          cloneMap(s.stocks, nil),
		transferts:      cloneMap(s.transferts, copyTransfert),
		commandes:       cloneMap(s.commandes, copyCommande),
		receptions:      cloneMap(s.receptions, copyReception),
		commandesClient: cloneMap(s.commandesClient, copyCommandeClient),
		livraisons:      cloneMap(s.livraisons, copyLivraison),
		fournisseurs:    cloneMap(s.fournisseurs, nil),
		clients:         cloneMap(s.clients, nil),
		clientsWebsite:  cloneMap(s.clientsWebsite, nil),
	}
}

type memTx struct{ s *memStore }

func (m memTx) RunTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := m.s.clone()
	if err := fn(nil); err != nil {
		*m.s = *snapshot
		return err
	}
	return nil
}

func nextNumero(f numerotation.Famille, annee int, numeros []string) string {
	seq, _ := numerotation.Max(f, annee, numeros)
	return f.Formater(seq+1, annee)
}

// ── Articles / mouvements ─────────────────────────────────────────────────────

type memArticles struct {
	repository.ArticleRepository
	s *memStore
}

func (r memArticles) FindByID(_ context.Context, id uuid.UUID) (*model.Article, error) {
	return r.FindForUpdateTx(nil, id)
}

func (r memArticles) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Article, error) {
	a, ok := r.s.articles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r memArticles) AddQuantitesTx(_ *gorm.DB, id uuid.UUID, qte, qtePhysique, qteVirtual decimal.Decimal) error {
	a, ok := r.s.articles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Qte = a.Qte.Add(qte)
	a.QtePhysique = a.QtePhysique.Add(qtePhysique)
	a.QteVirtual = a.QteVirtual.Add(qteVirtual)
	r.s.articles[id] = a
	return nil
}

func (r memArticles) SetQteTx(_ *gorm.DB, id uuid.UUID, qte decimal.Decimal) error {
	a, ok := r.s.articles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Qte = qte
	r.s.articles[id] = a
	return nil
}

type memMouvements struct {
	repository.MouvementStockRepository
	s *memStore
}

func (r memMouvements) CreateTx(_ *gorm.DB, m *model.MouvementStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.s.mouvements = append(r.s.mouvements, *m)
	return nil
}

// ── Depots / stock rows ───────────────────────────────────────────────────────

type memDepots struct{ s *memStore }

func (r memDepots) Create(_ context.Context, d *model.Depot) error {
	r.s.depots[d.ID] = *d
	return nil
}

func (r memDepots) FindByID(_ context.Context, id uuid.UUID) (*model.Depot, error) {
	d, ok := r.s.depots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r memDepots) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Depot, error) {
	return r.FindByID(context.Background(), id)
}

func (r memDepots) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Depot, error) {
	return r.FindByID(context.Background(), id)
}

func (r memDepots) FindByNom(_ context.Context, nom string) (*model.Depot, error) {
	for _, d := range r.s.depots {
		if d.Nom == nom {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memDepots) List(context.Context) ([]model.Depot, error) {
	out := make([]model.Depot, 0, len(r.s.depots))
	for _, d := range r.s.depots {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nom < out[j].Nom })
	return out, nil
}

func (r memDepots) Update(_ context.Context, d *model.Depot) error {
	r.s.depots[d.ID] = *d
	return nil
}

func (r memDepots) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.depots, id)
	return nil
}

type memStocks struct{ s *memStore }

func (r memStocks) FindForUpdateTx(_ *gorm.DB, articleID, depotID uuid.UUID) (*model.StockDepot, error) {
	for _, row := range r.s.stocks {
		if row.ArticleID == articleID && row.DepotID == depotID {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memStocks) ListByDepotForUpdateTx(_ *gorm.DB, depotID uuid.UUID) ([]model.StockDepot, error) {
	return r.ListByDepot(context.Background(), depotID)
}

func (r memStocks) CreateTx(_ *gorm.DB, row *model.StockDepot) error {
	r.s.stocks[row.ID] = *row
	return nil
}

func (r memStocks) UpdateQteTx(_ *gorm.DB, id uuid.UUID, qte decimal.Decimal) error {
	row := r.s.stocks[id]
	row.Qte = qte
	r.s.stocks[id] = row
	return nil
}

func (r memStocks) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.stocks, id)
	return nil
}

func (r memStocks) SumByArticleTx(_ *gorm.DB, articleID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, row := range r.s.stocks {
		if row.ArticleID == articleID {
			sum = sum.Add(row.Qte)
		}
	}
	return sum, nil
}

func (r memStocks) ListByDepot(_ context.Context, depotID uuid.UUID) ([]model.StockDepot, error) {
	var out []model.StockDepot
	for _, row := range r.s.stocks {
		if row.DepotID == depotID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleID.String() < out[j].ArticleID.String() })
	return out, nil
}

func (r memStocks) ListByArticle(_ context.Context, articleID uuid.UUID) ([]model.StockDepot, error) {
	var out []model.StockDepot
	for _, row := range r.s.stocks {
		if row.ArticleID == articleID {
			out = append(out, row)
		}
	}
	return out, nil
}

// ── Transferts ────────────────────────────────────────────────────────────────

type memTransferts struct {
	repository.TransfertRepository
	s *memStore
}

func (r memTransferts) FindByID(_ context.Context, id uuid.UUID) (*model.Transfert, error) {
	return r.FindForUpdateTx(nil, id)
}

func (r memTransferts) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Transfert, error) {
	t, ok := r.s.transferts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	t = copyTransfert(t)
	return &t, nil
}

func (r memTransferts) CountByDepotTx(_ *gorm.DB, depotID uuid.UUID) (int64, error) {
	var n int64
	for _, t := range r.s.transferts {
		if t.DepotSourceID == depotID || t.DepotDestinationID == depotID {
			n++
		}
	}
	return n, nil
}

func (r memTransferts) NextNumeroTx(_ *gorm.DB, annee int) (string, error) {
	var numeros []string
	for _, t := range r.s.transferts {
		numeros = append(numeros, t.Numero)
	}
	return nextNumero(numerotation.Transfert, annee, numeros), nil
}

func (r memTransferts) CreateTx(_ *gorm.DB, t *model.Transfert) error {
	r.s.transferts[t.ID] = copyTransfert(*t)
	return nil
}

func (r memTransferts) UpdateTx(_ *gorm.DB, t *model.Transfert) error {
	stored := r.s.transferts[t.ID]
	items := stored.Items
	stored = *t
	stored.Items = items
	r.s.transferts[t.ID] = stored
	return nil
}

func (r memTransferts) CreateItemTx(_ *gorm.DB, it *model.TransfertItem) error {
	t := r.s.transferts[it.TransfertID]
	t.Items = append(copyTransfert(t).Items, *it)
	r.s.transferts[it.TransfertID] = t
	return nil
}

func (r memTransferts) UpdateItemTx(_ *gorm.DB, it *model.TransfertItem) error {
	t := copyTransfert(r.s.transferts[it.TransfertID])
	for i := range t.Items {
		if t.Items[i].ID == it.ID {
			t.Items[i] = *it
		}
	}
	r.s.transferts[it.TransfertID] = t
	return nil
}

func (r memTransferts) DeleteItemTx(_ *gorm.DB, id uuid.UUID) error {
	for tid, t := range r.s.transferts {
		var kept []model.TransfertItem
		for _, it := range t.Items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		t.Items = kept
		r.s.transferts[tid] = t
	}
	return nil
}

func (r memTransferts) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.transferts, id)
	return nil
}

// ── Purchase orders / receptions ──────────────────────────────────────────────

type memCommandes struct {
	repository.BonCommandeRepository
	s *memStore
}

func (r memCommandes) FindByID(_ context.Context, id uuid.UUID) (*model.BonCommande, error) {
	return r.FindForUpdateTx(nil, id)
}

func (r memCommandes) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.BonCommande, error) {
	bc, ok := r.s.commandes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	bc = copyCommande(bc)
	return &bc, nil
}

func (r memCommandes) NextNumeroTx(_ *gorm.DB, annee int) (string, error) {
	var numeros []string
	for _, bc := range r.s.commandes {
		numeros = append(numeros, bc.NumeroCommande)
	}
	return nextNumero(numerotation.BonCommande, annee, numeros), nil
}

func (r memCommandes) CreateTx(_ *gorm.DB, bc *model.BonCommande) error {
	r.s.commandes[bc.ID] = copyCommande(*bc)
	return nil
}

func (r memCommandes) UpdateTx(_ *gorm.DB, bc *model.BonCommande) error {
	lignes := r.s.commandes[bc.ID].Lignes
	stored := *bc
	stored.Lignes = lignes
	r.s.commandes[bc.ID] = stored
	return nil
}

func (r memCommandes) CreateLigneTx(_ *gorm.DB, l *model.BonCommandeLigne) error {
	bc := copyCommande(r.s.commandes[l.BonCommandeID])
	bc.Lignes = append(bc.Lignes, *l)
	r.s.commandes[l.BonCommandeID] = bc
	return nil
}

func (r memCommandes) UpdateLigneTx(_ *gorm.DB, l *model.BonCommandeLigne) error {
	bc := copyCommande(r.s.commandes[l.BonCommandeID])
	for i := range bc.Lignes {
		if bc.Lignes[i].ID == l.ID {
			bc.Lignes[i] = *l
		}
	}
	r.s.commandes[l.BonCommandeID] = bc
	return nil
}

func (r memCommandes) DeleteLigneTx(_ *gorm.DB, id uuid.UUID) error {
	for bid, bc := range r.s.commandes {
		var kept []model.BonCommandeLigne
		for _, l := range bc.Lignes {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		bc.Lignes = kept
		r.s.commandes[bid] = bc
	}
	return nil
}

func (r memCommandes) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.commandes, id)
	return nil
}

type memReceptions struct {
	repository.BonReceptionRepository
	s *memStore
}

func (r memReceptions) FindByID(_ context.Context, id uuid.UUID) (*model.BonReception, error) {
	return r.FindForUpdateTx(nil, id)
}

func (r memReceptions) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.BonReception, error) {
	br, ok := r.s.receptions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	br = copyReception(br)
	return &br, nil
}

func (r memReceptions) CountByBonCommandeTx(_ *gorm.DB, bonCommandeID uuid.UUID) (int64, error) {
	var n int64
	for _, br := range r.s.receptions {
		if br.BonCommandeID != nil && *br.BonCommandeID == bonCommandeID {
			n++
		}
	}
	return n, nil
}

func (r memReceptions) NextNumeroTx(_ *gorm.DB, annee int) (string, error) {
	var numeros []string
	for _, br := range r.s.receptions {
		numeros = append(numeros, br.NumeroReception)
	}
	return nextNumero(numerotation.BonReception, annee, numeros), nil
}

func (r memReceptions) CreateTx(_ *gorm.DB, br *model.BonReception) error {
	r.s.receptions[br.ID] = copyReception(*br)
	return nil
}

func (r memReceptions) UpdateTx(_ *gorm.DB, br *model.BonReception) error {
	lignes := r.s.receptions[br.ID].Lignes
	stored := *br
	stored.Lignes = lignes
	r.s.receptions[br.ID] = stored
	return nil
}

func (r memReceptions) CreateLigneTx(_ *gorm.DB, l *model.BonReceptionLigne) error {
	br := copyReception(r.s.receptions[l.BonReceptionID])
	br.Lignes = append(br.Lignes, *l)
	r.s.receptions[l.BonReceptionID] = br
	return nil
}

func (r memReceptions) UpdateLigneTx(_ *gorm.DB, l *model.BonReceptionLigne) error {
	br := copyReception(r.s.receptions[l.BonReceptionID])
	for i := range br.Lignes {
		if br.Lignes[i].ID == l.ID {
			br.Lignes[i] = *l
		}
	}
	r.s.receptions[l.BonReceptionID] = br
	return nil
}

func (r memReceptions) DeleteLigneTx(_ *gorm.DB, id uuid.UUID) error {
	for bid, br := range r.s.receptions {
		var kept []model.BonReceptionLigne
		for _, l := range br.Lignes {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		br.Lignes = kept
		r.s.receptions[bid] = br
	}
	return nil
}

func (r memReceptions) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.receptions, id)
	return nil
}

// ── Client orders / delivery notes ────────────────────────────────────────────

type memCommandesClient struct {
	repository.BonCommandeClientRepository
	s *memStore
}

func (r memCommandesClient) FindByID(_ context.Context, id uuid.UUID) (*model.BonCommandeClient, error) {
	return r.FindForUpdateTx(nil, id)
}

func (r memCommandesClient) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.BonCommandeClient, error) {
	bc, ok := r.s.commandesClient[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	bc = copyCommandeClient(bc)
	return &bc, nil
}

func (r memCommandesClient) NextNumeroTx(_ *gorm.DB, annee int) (string, error) {
	var numeros []string
	for _, bc := range r.s.commandesClient {
		numeros = append(numeros, bc.NumeroCommande)
	}
	return nextNumero(numerotation.BonCommandeClient, annee, numeros), nil
}

func (r memCommandesClient) CreateTx(_ *gorm.DB, bc *model.BonCommandeClient) error {
	r.s.commandesClient[bc.ID] = copyCommandeClient(*bc)
	return nil
}

func (r memCommandesClient) UpdateTx(_ *gorm.DB, bc *model.BonCommandeClient) error {
	lignes := r.s.commandesClient[bc.ID].Lignes
	stored := *bc
	stored.Lignes = lignes
	r.s.commandesClient[bc.ID] = stored
	return nil
}

func (r memCommandesClient) CreateLigneTx(_ *gorm.DB, l *model.BonCommandeClientLigne) error {
	bc := copyCommandeClient(r.s.commandesClient[l.BonCommandeClientID])
	bc.Lignes = append(bc.Lignes, *l)
	r.s.commandesClient[l.BonCommandeClientID] = bc
	return nil
}

func (r memCommandesClient) UpdateLigneTx(_ *gorm.DB, l *model.BonCommandeClientLigne) error {
	bc := copyCommandeClient(r.s.commandesClient[l.BonCommandeClientID])
	for i := range bc.Lignes {
		if bc.Lignes[i].ID == l.ID {
			bc.Lignes[i] = *l
		}
	}
	r.s.commandesClient[l.BonCommandeClientID] = bc
	return nil
}

func (r memCommandesClient) DeleteLigneTx(_ *gorm.DB, id uuid.UUID) error {
	for bid, bc := range r.s.commandesClient {
		var kept []model.BonCommandeClientLigne
		for _, l := range bc.Lignes {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		bc.Lignes = kept
		r.s.commandesClient[bid] = bc
	}
	return nil
}

func (r memCommandesClient) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.commandesClient, id)
	return nil
}

type memLivraisons struct {
	repository.BonLivraisonRepository
	s *memStore
}

func (r memLivraisons) FindByID(_ context.Context, id uuid.UUID) (*model.BonLivraison, error) {
	return r.FindForUpdateTx(nil, id)
}

func (r memLivraisons) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.BonLivraison, error) {
	bl, ok := r.s.livraisons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	bl = copyLivraison(bl)
	return &bl, nil
}

func (r memLivraisons) CountByCommandeClientTx(_ *gorm.DB, commandeID uuid.UUID) (int64, error) {
	var n int64
	for _, bl := range r.s.livraisons {
		if bl.BonCommandeClientID != nil && *bl.BonCommandeClientID == commandeID {
			n++
		}
	}
	return n, nil
}

func (r memLivraisons) NextNumeroTx(_ *gorm.DB, annee int) (string, error) {
	var numeros []string
	for _, bl := range r.s.livraisons {
		numeros = append(numeros, bl.NumeroLivraison)
	}
	return nextNumero(numerotation.BonLivraison, annee, numeros), nil
}

func (r memLivraisons) CreateTx(_ *gorm.DB, bl *model.BonLivraison) error {
	r.s.livraisons[bl.ID] = copyLivraison(*bl)
	return nil
}

func (r memLivraisons) UpdateTx(_ *gorm.DB, bl *model.BonLivraison) error {
	lignes := r.s.livraisons[bl.ID].Lignes
	stored := *bl
	stored.Lignes = lignes
	r.s.livraisons[bl.ID] = stored
	return nil
}

func (r memLivraisons) CreateLigneTx(_ *gorm.DB, l *model.BonLivraisonLigne) error {
	bl := copyLivraison(r.s.livraisons[l.BonLivraisonID])
	bl.Lignes = append(bl.Lignes, *l)
	r.s.livraisons[l.BonLivraisonID] = bl
	return nil
}

func (r memLivraisons) UpdateLigneTx(_ *gorm.DB, l *model.BonLivraisonLigne) error {
	bl := copyLivraison(r.s.livraisons[l.BonLivraisonID])
	for i := range bl.Lignes {
		if bl.Lignes[i].ID == l.ID {
			bl.Lignes[i] = *l
		}
	}
	r.s.livraisons[l.BonLivraisonID] = bl
	return nil
}

func (r memLivraisons) DeleteLigneTx(_ *gorm.DB, id uuid.UUID) error {
	for bid, bl := range r.s.livraisons {
		var kept []model.BonLivraisonLigne
		for _, l := range bl.Lignes {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		bl.Lignes = kept
		r.s.livraisons[bid] = bl
	}
	return nil
}

func (r memLivraisons) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.livraisons, id)
	return nil
}

// ── Tiers ─────────────────────────────────────────────────────────────────────

type memFournisseurs struct {
	repository.FournisseurRepository
	s *memStore
}

func (r memFournisseurs) FindByID(_ context.Context, id uuid.UUID) (*model.Fournisseur, error) {
	f, ok := r.s.fournisseurs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &f, nil
}

type memClients struct {
	repository.ClientRepository
	s *memStore
}

func (r memClients) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memClients) CreateWebsiteTx(_ *gorm.DB, c *model.ClientWebsite) error {
	r.s.clientsWebsite[c.ID] = *c
	return nil
}

// ── Fixture ───────────────────────────────────────────────────────────────────

// fixture wires every stock service on one memStore.
type fixture struct {
	s *memStore

	inventaire InventaireService
	registre   *RegistreDepot
	depots     DepotService
	transferts TransfertService
	commandes  BonCommandeService
	receptions BonReceptionService
	cmdClient  CommandeClientService
	livraisons LivraisonService
}

type fixtureOptions struct {
	libererReservation bool
	synchroniser       bool
}

func newFixture(opts fixtureOptions) *fixture {
	s := newMemStore()
	tx := memTx{s: s}
	articles := memArticles{s: s}
	stocks := memStocks{s: s}
	depots := memDepots{s: s}
	transferts := memTransferts{s: s}
	commandes := memCommandes{s: s}
	receptions := memReceptions{s: s}
	cmdClient := memCommandesClient{s: s}
	livraisons := memLivraisons{s: s}
	fournisseurs := memFournisseurs{s: s}
	clients := memClients{s: s}

	inventaire := NewInventaireService(articles, memMouvements{s: s})
	registre := NewRegistreDepot(stocks, inventaire)
	return &fixture{
		s:          s,
		inventaire: inventaire,
		registre:   registre,
		depots:     NewDepotService(tx, depots, stocks, transferts, registre, inventaire, nil),
		transferts: NewTransfertService(tx, transferts, depots, registre, inventaire, nil),
		commandes:  NewBonCommandeService(tx, commandes, receptions, fournisseurs, inventaire, nil),
		receptions: NewBonReceptionService(tx, receptions, commandes, fournisseurs, inventaire, opts.libererReservation),
		cmdClient:  NewCommandeClientService(tx, cmdClient, livraisons, clients, inventaire),
		livraisons: NewLivraisonService(tx, livraisons, cmdClient, clients, inventaire, nil, opts.synchroniser),
	}
}

func (f *fixture) article(ref string, qte int64) uuid.UUID {
	id := uuid.New()
	q := decimal.NewFromInt(qte)
	f.s.articles[id] = model.Article{
		ID:          id,
		Reference:   ref,
		Designation: "Article " + ref,
		PrixAchatHT: decimal.NewFromInt(10),
		PrixVenteHT: decimal.NewFromInt(15),
		TVA:         decimal.NewFromInt(19),
		Qte:         q,
		QtePhysique: q,
		Actif:       true,
	}
	return id
}

func (f *fixture) depot(nom string) uuid.UUID {
	id := uuid.New()
	f.s.depots[id] = model.Depot{ID: id, Nom: nom}
	return id
}

// stocker puts qte of the article in the depot and keeps Article.qte equal to
// the depot sum.
func (f *fixture) stocker(articleID, depotID uuid.UUID, qte int64) {
	id := uuid.New()
	f.s.stocks[id] = model.StockDepot{ID: id, ArticleID: articleID, DepotID: depotID, Qte: decimal.NewFromInt(qte)}
	a := f.s.articles[articleID]
	a.Qte = a.Qte.Add(decimal.NewFromInt(qte))
	f.s.articles[articleID] = a
}

func (f *fixture) fournisseur() uuid.UUID {
	id := uuid.New()
	f.s.fournisseurs[id] = model.Fournisseur{ID: id, RaisonSociale: "Fournisseur Nord", MatriculeFiscal: id.String()[:8], Actif: true}
	return id
}

func (f *fixture) client() uuid.UUID {
	id := uuid.New()
	f.s.clients[id] = model.Client{ID: id, Nom: "Sfax Équipement", Actif: true}
	return id
}

func (f *fixture) qteDepot(articleID, depotID uuid.UUID) decimal.Decimal {
	for _, row := range f.s.stocks {
		if row.ArticleID == articleID && row.DepotID == depotID {
			return row.Qte
		}
	}
	return decimal.Zero
}

func (f *fixture) ligneExiste(articleID, depotID uuid.UUID) bool {
	for _, row := range f.s.stocks {
		if row.ArticleID == articleID && row.DepotID == depotID {
			return true
		}
	}
	return false
}

func (f *fixture) lignesDepot(depotID uuid.UUID) int {
	n := 0
	for _, row := range f.s.stocks {
		if row.DepotID == depotID {
			n++
		}
	}
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }
