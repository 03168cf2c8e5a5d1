package service

import (
	"context"
	"errors"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ArticleService is the CRUD surface of the article store. Quantities are
// read-only here: they only move through documents and depot operations.
type ArticleService interface {
	Creer(ctx context.Context, req dto.CreerArticleRequest) (*dto.ArticleResponse, error)
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.ArticleResponse, error)
	Lister(ctx context.Context, filter dto.ArticleFilter) (*dto.Page[dto.ArticleResponse], error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.ModifierArticleRequest) (*dto.ArticleResponse, error)
	Desactiver(ctx context.Context, id uuid.UUID) error
	Stock(ctx context.Context, id uuid.UUID) (*dto.ArticleStockResponse, error)
}

type articleService struct {
	repo   repository.ArticleRepository
	stocks repository.StockDepotRepository
}

func NewArticleService(repo repository.ArticleRepository, stocks repository.StockDepotRepository) ArticleService {
	return &articleService{repo: repo, stocks: stocks}
}

func (s *articleService) Creer(ctx context.Context, req dto.CreerArticleRequest) (*dto.ArticleResponse, error) {
	if err := s.referenceLibre(ctx, req.Reference, uuid.Nil); err != nil {
		return nil, err
	}
	a := model.Article{
		ID:          uuid.New(),
		Reference:   req.Reference,
		Designation: req.Designation,
		Description: req.Description,
		PrixAchatHT: req.PrixAchatHT,
		PrixVenteHT: req.PrixVenteHT,
		TVA:         req.TVA,
		TauxFodec:   req.TauxFodec,
		Actif:       true,
	}
	var err error
	if a.CategorieID, err = parseOptionalID(req.CategorieID, "categorie_id"); err != nil {
		return nil, err
	}
	if a.SousCategorieID, err = parseOptionalID(req.SousCategorieID, "sous_categorie_id"); err != nil {
		return nil, err
	}
	if a.FournisseurID, err = parseOptionalID(req.FournisseurID, "fournisseur_id"); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &a); err != nil {
		return nil, err
	}
	return s.Obtenir(ctx, a.ID)
}

func (s *articleService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.ArticleResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Article introuvable")
	}
	return articleToResponse(a), nil
}

func (s *articleService) Lister(ctx context.Context, filter dto.ArticleFilter) (*dto.Page[dto.ArticleResponse], error) {
	categorieID, err := parseOptionalID(&filter.CategorieID, "categorie_id")
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, repository.ArticleFilter{
		Search:      filter.Search,
		CategorieID: categorieID,
		Actif:       filter.Actif,
		Page:        filter.Page,
		Limit:       filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.ArticleResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *articleToResponse(&rows[i]))
	}
	return dto.NewPage(data, total, filter.Page, filter.Limit), nil
}

func (s *articleService) Modifier(ctx context.Context, id uuid.UUID, req dto.ModifierArticleRequest) (*dto.ArticleResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Article introuvable")
	}
	if req.Reference != nil && *req.Reference != a.Reference {
		if err := s.referenceLibre(ctx, *req.Reference, a.ID); err != nil {
			return nil, err
		}
		a.Reference = *req.Reference
	}
	if req.Designation != nil {
		a.Designation = *req.Designation
	}
	if req.Description != nil {
		a.Description = req.Description
	}
	if req.PrixAchatHT != nil {
		a.PrixAchatHT = *req.PrixAchatHT
	}
	if req.PrixVenteHT != nil {
		a.PrixVenteHT = *req.PrixVenteHT
	}
	if req.TVA != nil {
		a.TVA = *req.TVA
	}
	if req.TauxFodec != nil {
		a.TauxFodec = *req.TauxFodec
	}
	if req.CategorieID != nil {
		if a.CategorieID, err = parseOptionalID(req.CategorieID, "categorie_id"); err != nil {
			return nil, err
		}
	}
	if req.SousCategorieID != nil {
		if a.SousCategorieID, err = parseOptionalID(req.SousCategorieID, "sous_categorie_id"); err != nil {
			return nil, err
		}
	}
	if req.FournisseurID != nil {
		if a.FournisseurID, err = parseOptionalID(req.FournisseurID, "fournisseur_id"); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.Obtenir(ctx, a.ID)
}

func (s *articleService) Desactiver(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "Article introuvable")
	}
	return s.repo.SoftDelete(ctx, id)
}

// Stock returns the article counters with the depot rows they aggregate.
func (s *articleService) Stock(ctx context.Context, id uuid.UUID) (*dto.ArticleStockResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Article introuvable")
	}
	rows, err := s.stocks.ListByArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ArticleStockResponse{
		ArticleID:   a.ID.String(),
		Reference:   a.Reference,
		Designation: a.Designation,
		Qte:         a.Qte,
		QtePhysique: a.QtePhysique,
		QteVirtual:  a.QteVirtual,
		TotalDepots: decimal.Zero,
		Depots:      make([]dto.StockDepotResponse, 0, len(rows)),
	}
	for i := range rows {
		resp.TotalDepots = resp.TotalDepots.Add(rows[i].Qte)
		resp.Depots = append(resp.Depots, stockDepotToResponse(&rows[i]))
	}
	return resp, nil
}

func (s *articleService) referenceLibre(ctx context.Context, reference string, self uuid.UUID) error {
	existant, err := s.repo.FindByReference(ctx, reference)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existant.ID != self:
		return apierror.Conflict("La référence %s est déjà utilisée", reference)
	}
	return nil
}

func articleToResponse(a *model.Article) *dto.ArticleResponse {
	resp := &dto.ArticleResponse{
		ID:              a.ID.String(),
		Reference:       a.Reference,
		Designation:     a.Designation,
		Description:     a.Description,
		PrixAchatHT:     a.PrixAchatHT,
		PrixVenteHT:     a.PrixVenteHT,
		TVA:             a.TVA,
		TauxFodec:       a.TauxFodec,
		Qte:             a.Qte,
		QtePhysique:     a.QtePhysique,
		QteVirtual:      a.QteVirtual,
		CategorieID:     optionalIDString(a.CategorieID),
		SousCategorieID: optionalIDString(a.SousCategorieID),
		FournisseurID:   optionalIDString(a.FournisseurID),
		Actif:           a.Actif,
	}
	if a.Categorie != nil {
		resp.Categorie = &a.Categorie.Nom
	}
	if a.Fournisseur != nil {
		resp.Fournisseur = &a.Fournisseur.RaisonSociale
	}
	return resp
}

func stockDepotToResponse(s *model.StockDepot) dto.StockDepotResponse {
	r := dto.StockDepotResponse{
		ArticleID: s.ArticleID.String(),
		DepotID:   s.DepotID.String(),
		Qte:       s.Qte,
	}
	if s.Article != nil {
		r.Reference = s.Article.Reference
		r.Designation = s.Article.Designation
	}
	if s.Depot != nil {
		r.Depot = s.Depot.Nom
	}
	return r
}
