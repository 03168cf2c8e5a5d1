package service

import (
	"context"
	"errors"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Categories ────────────────────────────────────────────────────────────────

type CategorieService interface {
	Creer(ctx context.Context, req dto.CategorieRequest) (*dto.CategorieResponse, error)
	Lister(ctx context.Context, soloActives bool) ([]dto.CategorieResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.CategorieRequest) (*dto.CategorieResponse, error)
	Desactiver(ctx context.Context, id uuid.UUID) error
}

type categorieService struct {
	repo repository.CategorieRepository
}

func NewCategorieService(repo repository.CategorieRepository) CategorieService {
	return &categorieService{repo: repo}
}

func (s *categorieService) Creer(ctx context.Context, req dto.CategorieRequest) (*dto.CategorieResponse, error) {
	parentID, err := s.parent(ctx, req.ParentID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	c := model.Categorie{ID: uuid.New(), Nom: req.Nom, Description: req.Description, ParentID: parentID, Actif: true}
	if req.Actif != nil {
		c.Actif = *req.Actif
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return categorieToResponse(&c), nil
}

func (s *categorieService) Lister(ctx context.Context, soloActives bool) ([]dto.CategorieResponse, error) {
	cats, err := s.repo.List(ctx, soloActives)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategorieResponse, 0, len(cats))
	for i := range cats {
		out = append(out, *categorieToResponse(&cats[i]))
	}
	return out, nil
}

func (s *categorieService) Modifier(ctx context.Context, id uuid.UUID, req dto.CategorieRequest) (*dto.CategorieResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Catégorie introuvable")
	}
	if c.ParentID, err = s.parent(ctx, req.ParentID, c.ID); err != nil {
		return nil, err
	}
	c.Nom = req.Nom
	c.Description = req.Description
	if req.Actif != nil {
		c.Actif = *req.Actif
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return categorieToResponse(c), nil
}

func (s *categorieService) Desactiver(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "Catégorie introuvable")
	}
	return s.repo.Desactiver(ctx, id)
}

// parent resolves a sous-catégorie's parent; a categorie cannot be its own parent.
func (s *categorieService) parent(ctx context.Context, raw *string, self uuid.UUID) (*uuid.UUID, error) {
	id, err := parseOptionalID(raw, "parent_id")
	if err != nil || id == nil {
		return nil, err
	}
	if *id == self {
		return nil, apierror.Validation("Une catégorie ne peut pas être son propre parent")
	}
	if _, err := s.repo.FindByID(ctx, *id); err != nil {
		return nil, notFound(err, "Catégorie parente introuvable")
	}
	return id, nil
}

func categorieToResponse(c *model.Categorie) *dto.CategorieResponse {
	return &dto.CategorieResponse{
		ID:          c.ID.String(),
		Nom:         c.Nom,
		Description: c.Description,
		ParentID:    optionalIDString(c.ParentID),
		Actif:       c.Actif,
	}
}

// ── Fournisseurs ──────────────────────────────────────────────────────────────

type FournisseurService interface {
	Creer(ctx context.Context, req dto.FournisseurRequest) (*dto.FournisseurResponse, error)
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.FournisseurResponse, error)
	Lister(ctx context.Context) ([]dto.FournisseurResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.FournisseurRequest) (*dto.FournisseurResponse, error)
	Desactiver(ctx context.Context, id uuid.UUID) error
}

type fournisseurService struct {
	repo repository.FournisseurRepository
}

func NewFournisseurService(repo repository.FournisseurRepository) FournisseurService {
	return &fournisseurService{repo: repo}
}

func (s *fournisseurService) Creer(ctx context.Context, req dto.FournisseurRequest) (*dto.FournisseurResponse, error) {
	if err := s.matriculeLibre(ctx, req.MatriculeFiscal, uuid.Nil); err != nil {
		return nil, err
	}
	f := model.Fournisseur{
		ID:              uuid.New(),
		RaisonSociale:   req.RaisonSociale,
		MatriculeFiscal: req.MatriculeFiscal,
		Telephone:       req.Telephone,
		Email:           req.Email,
		Adresse:         req.Adresse,
		Actif:           true,
	}
	if err := s.repo.Create(ctx, &f); err != nil {
		return nil, err
	}
	return fournisseurToResponse(&f), nil
}

func (s *fournisseurService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.FournisseurResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Fournisseur introuvable")
	}
	return fournisseurToResponse(f), nil
}

func (s *fournisseurService) Lister(ctx context.Context) ([]dto.FournisseurResponse, error) {
	fs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FournisseurResponse, 0, len(fs))
	for i := range fs {
		out = append(out, *fournisseurToResponse(&fs[i]))
	}
	return out, nil
}

func (s *fournisseurService) Modifier(ctx context.Context, id uuid.UUID, req dto.FournisseurRequest) (*dto.FournisseurResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Fournisseur introuvable")
	}
	if req.MatriculeFiscal != f.MatriculeFiscal {
		if err := s.matriculeLibre(ctx, req.MatriculeFiscal, f.ID); err != nil {
			return nil, err
		}
	}
	f.RaisonSociale = req.RaisonSociale
	f.MatriculeFiscal = req.MatriculeFiscal
	f.Telephone = req.Telephone
	f.Email = req.Email
	f.Adresse = req.Adresse
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return fournisseurToResponse(f), nil
}

func (s *fournisseurService) Desactiver(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "Fournisseur introuvable")
	}
	return s.repo.Desactiver(ctx, id)
}

func (s *fournisseurService) matriculeLibre(ctx context.Context, matricule string, self uuid.UUID) error {
	existant, err := s.repo.FindByMatricule(ctx, matricule)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existant.ID != self:
		return apierror.Conflict("Le matricule fiscal %s est déjà attribué à %s", matricule, existant.RaisonSociale)
	}
	return nil
}

func fournisseurToResponse(f *model.Fournisseur) *dto.FournisseurResponse {
	return &dto.FournisseurResponse{
		ID:              f.ID.String(),
		RaisonSociale:   f.RaisonSociale,
		MatriculeFiscal: f.MatriculeFiscal,
		Telephone:       f.Telephone,
		Email:           f.Email,
		Adresse:         f.Adresse,
		Actif:           f.Actif,
	}
}

// ── Clients ───────────────────────────────────────────────────────────────────

type ClientService interface {
	Creer(ctx context.Context, req dto.ClientRequest) (*dto.ClientResponse, error)
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	Lister(ctx context.Context, search string) ([]dto.ClientResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.ClientRequest) (*dto.ClientResponse, error)
	Desactiver(ctx context.Context, id uuid.UUID) error
	ListerWebsite(ctx context.Context) ([]dto.ClientWebsiteResponse, error)
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) Creer(ctx context.Context, req dto.ClientRequest) (*dto.ClientResponse, error) {
	c := model.Client{
		ID:              uuid.New(),
		Nom:             req.Nom,
		MatriculeFiscal: req.MatriculeFiscal,
		Telephone:       req.Telephone,
		Email:           req.Email,
		Adresse:         req.Adresse,
		Actif:           true,
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return clientToResponse(&c), nil
}

func (s *clientService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Client introuvable")
	}
	return clientToResponse(c), nil
}

func (s *clientService) Lister(ctx context.Context, search string) ([]dto.ClientResponse, error) {
	cs, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientResponse, 0, len(cs))
	for i := range cs {
		out = append(out, *clientToResponse(&cs[i]))
	}
	return out, nil
}

func (s *clientService) Modifier(ctx context.Context, id uuid.UUID, req dto.ClientRequest) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Client introuvable")
	}
	c.Nom = req.Nom
	c.MatriculeFiscal = req.MatriculeFiscal
	c.Telephone = req.Telephone
	c.Email = req.Email
	c.Adresse = req.Adresse
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

func (s *clientService) Desactiver(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "Client introuvable")
	}
	return s.repo.Desactiver(ctx, id)
}

func (s *clientService) ListerWebsite(ctx context.Context) ([]dto.ClientWebsiteResponse, error) {
	cs, err := s.repo.ListWebsite(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientWebsiteResponse, 0, len(cs))
	for _, w := range cs {
		out = append(out, dto.ClientWebsiteResponse{
			ID: w.ID.String(), Nom: w.Nom, Telephone: w.Telephone, Adresse: w.Adresse, Email: w.Email,
		})
	}
	return out, nil
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:              c.ID.String(),
		Nom:             c.Nom,
		MatriculeFiscal: c.MatriculeFiscal,
		Telephone:       c.Telephone,
		Email:           c.Email,
		Adresse:         c.Adresse,
		Actif:           c.Actif,
	}
}
