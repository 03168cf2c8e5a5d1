package dto

// ─── Categories ──────────────────────────────────────────────────────────────

type CategorieRequest struct {
	Nom         string  `json:"nom"         validate:"required,min=2,max=100"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"   validate:"omitempty,uuid"`
	Actif       *bool   `json:"actif"`
}

type CategorieResponse struct {
	ID          string  `json:"id"`
	Nom         string  `json:"nom"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	Actif       bool    `json:"actif"`
}

// ─── Fournisseurs ────────────────────────────────────────────────────────────

type FournisseurRequest struct {
	RaisonSociale   string  `json:"raison_sociale"   validate:"required,min=2,max=200"`
	MatriculeFiscal string  `json:"matricule_fiscal" validate:"required,min=3,max=40"`
	Telephone       *string `json:"telephone"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Adresse         *string `json:"adresse"`
}

type FournisseurResponse struct {
	ID              string  `json:"id"`
	RaisonSociale   string  `json:"raison_sociale"`
	MatriculeFiscal string  `json:"matricule_fiscal"`
	Telephone       *string `json:"telephone"`
	Email           *string `json:"email"`
	Adresse         *string `json:"adresse"`
	Actif           bool    `json:"actif"`
}

// ─── Clients ─────────────────────────────────────────────────────────────────

type ClientRequest struct {
	Nom             string  `json:"nom"              validate:"required,min=2,max=200"`
	MatriculeFiscal *string `json:"matricule_fiscal"`
	Telephone       *string `json:"telephone"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Adresse         *string `json:"adresse"`
}

type ClientResponse struct {
	ID              string  `json:"id"`
	Nom             string  `json:"nom"`
	MatriculeFiscal *string `json:"matricule_fiscal"`
	Telephone       *string `json:"telephone"`
	Email           *string `json:"email"`
	Adresse         *string `json:"adresse"`
	Actif           bool    `json:"actif"`
}

// ClientWebsiteInfo captures an unregistered web customer inline.
type ClientWebsiteInfo struct {
	Nom       string  `json:"nom"       validate:"required"`
	Telephone string  `json:"telephone" validate:"required"`
	Adresse   string  `json:"adresse"   validate:"required"`
	Email     *string `json:"email"     validate:"omitempty,email"`
}

type ClientWebsiteResponse struct {
	ID        string  `json:"id"`
	Nom       string  `json:"nom"`
	Telephone string  `json:"telephone"`
	Adresse   string  `json:"adresse"`
	Email     *string `json:"email"`
}
