// ABOUTME: Registry of entity descriptors with the five built-in backoffice kinds
// ABOUTME: Unknown kinds resolve to a generic descriptor instead of failing

package entity

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrInvalidKind is returned by ParseKind for names that cannot be a kind.
var ErrInvalidKind = errors.New("invalid entity kind")

var kindPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// ParseKind validates a kind name taken from a URL or the command line.
func ParseKind(s string) (Kind, error) {
	if !kindPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return Kind(s), nil
}

// Registry maps kinds to descriptors. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds []Kind
	byKey map[Kind]*Descriptor
}

// NewRegistry returns a registry preloaded with the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{byKey: make(map[Kind]*Descriptor)}
	for _, d := range builtins() {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a descriptor.
func (r *Registry) Register(d *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[d.Kind]; !exists {
		r.kinds = append(r.kinds, d.Kind)
	}
	r.byKey[d.Kind] = d
}

// Lookup returns the descriptor for kind and whether it is registered.
func (r *Registry) Lookup(kind Kind) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byKey[kind]
	return d, ok
}

// Get returns the descriptor for kind, or a generic one for unknown kinds.
func (r *Registry) Get(kind Kind) *Descriptor {
	if d, ok := r.Lookup(kind); ok {
		return d
	}
	return Generic(kind)
}

// Kinds lists registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Kind(nil), r.kinds...)
}

// Generic builds the descriptor used for kinds nobody registered.
func Generic(kind Kind) *Descriptor {
	title := strings.ToUpper(string(kind[:min(1, len(kind))])) + string(kind[min(1, len(kind)):])
	return &Descriptor{
		Kind:         kind,
		Singular:     title,
		Plural:       title,
		Icon:         "fa-database",
		SearchFields: []string{"id"},
		Columns:      []Column{{Label: "ID", Keys: []string{"id"}}},
		Fallback:     defaultActivity,
	}
}

var defaultActivity = ActivityTemplate{
	Title:       "{kind} : {action}",
	Description: "Action {action} effectuée sur {kind}",
	Icon:        "fa-info-circle",
	Color:       "#607D8B",
}

var statusBadge = Column{Label: "Statut", Keys: []string{"status"}, Format: FormatStatus}

func builtins() []*Descriptor {
	return []*Descriptor{
		{
			Kind:     Users,
			Singular: "Utilisateur",
			Plural:   "Utilisateurs",
			Icon:     "fa-users",
			Fields: []Field{
				{Name: "firstName", Label: "Prénom", Type: FieldText, Required: true},
				{Name: "lastName", Label: "Nom", Type: FieldText, Required: true},
				{Name: "email", Label: "Email", Type: FieldEmail, Required: true},
				{Name: "role", Label: "Rôle", Type: FieldSelect, Options: []string{"admin", "user", "editor"}, Required: true},
				{Name: "status", Label: "Statut", Type: FieldSelect, Options: []string{"active", "inactive"}, Required: true},
			},
			Columns: []Column{
				{Label: "ID", Keys: []string{"id"}},
				{Label: "Nom", Format: FormatName},
				{Label: "Email", Keys: []string{"email"}},
				{Label: "Rôle", Keys: []string{"role"}},
				statusBadge,
				{Label: "Inscription", Keys: []string{"createdAt", "registrationDate", "date"}, Format: FormatDate},
			},
			SearchFields: []string{"firstName", "lastName", "email", "role"},
			ExportFields: []ExportField{
				{Label: "ID", Key: "id"},
				{Label: "Prénom", Key: "firstName"},
				{Label: "Nom", Key: "lastName"},
				{Label: "Email", Key: "email"},
				{Label: "Téléphone", Key: "phone"},
				{Label: "Rôle", Key: "role"},
				{Label: "Statut", Key: "status"},
			},
			Activity: map[Action]ActivityTemplate{
				ActionCreate: {Title: "Nouvel utilisateur", Description: "{name} a été ajouté", Icon: "fa-user-plus", Color: "#4CAF50"},
				ActionUpdate: {Title: "Utilisateur modifié", Description: "{name} a été mis à jour", Icon: "fa-user-edit", Color: "#2196F3"},
				ActionDelete: {Title: "Utilisateur supprimé", Description: "L'utilisateur #{id} a été supprimé", Icon: "fa-user-times", Color: "#F44336"},
			},
			Fallback: ActivityTemplate{Title: "Utilisateurs : {action}", Icon: "fa-user", Color: "#4CAF50"},
			DisplayName: func(r Record) string {
				if first := r.Text("firstName"); first != "" {
					return first + " " + r.Text("lastName")
				}
				return orDefault(r.Text("name"), "Utilisateur")
			},
		},
		{
			Kind:     Products,
			Singular: "Produit",
			Plural:   "Produits",
			Icon:     "fa-box",
			Fields: []Field{
				{Name: "name", Label: "Nom du produit", Type: FieldText, Required: true},
				{Name: "category", Label: "Catégorie", Type: FieldSelect, Options: []string{"Électronique", "Vêtements", "Alimentation", "Maison", "Sports"}, Required: true},
				{Name: "price", Label: "Prix (€)", Type: FieldNumber, Step: "0.01", Required: true},
				{Name: "stock", Label: "Stock", Type: FieldNumber, Required: true},
				{Name: "status", Label: "Statut", Type: FieldSelect, Options: []string{"in_stock", "out_of_stock", "discontinued"}, Required: true},
				{Name: "description", Label: "Description", Type: FieldTextarea},
			},
			Columns: []Column{
				{Label: "ID", Keys: []string{"id"}},
				{Label: "Nom", Keys: []string{"name"}},
				{Label: "Catégorie", Keys: []string{"category"}},
				{Label: "Prix", Keys: []string{"price"}, Format: FormatPrice},
				{Label: "Stock", Keys: []string{"stock"}},
				statusBadge,
			},
			SearchFields: []string{"name", "category"},
			ExportFields: []ExportField{
				{Label: "ID", Key: "id"},
				{Label: "Nom", Key: "name"},
				{Label: "Catégorie", Key: "category"},
				{Label: "Prix", Key: "price"},
				{Label: "Stock", Key: "stock"},
				{Label: "SKU", Key: "sku"},
				{Label: "Statut", Key: "status"},
			},
			MarkdownFields: []string{"description"},
			Activity: map[Action]ActivityTemplate{
				ActionCreate: {Title: "Nouveau produit", Description: "{name} ajouté au catalogue", Icon: "fa-box-open", Color: "#2196F3"},
				ActionUpdate: {Title: "Produit mis à jour", Description: "{name} modifié", Icon: "fa-edit", Color: "#FF9800"},
				ActionDelete: {Title: "Produit supprimé", Description: "Produit #{id} retiré du stock", Icon: "fa-trash", Color: "#F44336"},
			},
			Fallback: ActivityTemplate{Title: "Produits : {action}", Icon: "fa-box", Color: "#2196F3"},
			DisplayName: func(r Record) string {
				return orDefault(r.Text("name"), "Produit")
			},
		},
		{
			Kind:     Orders,
			Singular: "Commande",
			Plural:   "Commandes",
			Icon:     "fa-shopping-cart",
			Fields: []Field{
				{Name: "customerName", Label: "Client", Type: FieldText, Required: true},
				{Name: "totalAmount", Label: "Montant", Type: FieldNumber, Step: "0.01", Required: true},
				{Name: "status", Label: "Statut", Type: FieldSelect, Options: []string{"pending", "shipped", "delivered", "cancelled"}, Required: true},
			},
			Columns: []Column{
				{Label: "ID", Keys: []string{"id"}},
				{Label: "N° commande", Keys: []string{"orderNumber"}},
				{Label: "Client", Keys: []string{"customerName", "client"}},
				{Label: "Montant", Keys: []string{"totalAmount", "amount"}, Format: FormatPrice},
				statusBadge,
				{Label: "Date", Keys: []string{"orderDate", "date"}, Format: FormatDate},
			},
			SearchFields: []string{"orderNumber", "customerName"},
			ExportFields: []ExportField{
				{Label: "ID", Key: "id"},
				{Label: "N° commande", Key: "orderNumber"},
				{Label: "Client", Key: "customerName"},
				{Label: "Montant", Key: "totalAmount"},
				{Label: "Statut", Key: "status"},
				{Label: "Date", Key: "orderDate"},
				{Label: "Paiement", Key: "paymentMethod"},
			},
			Activity: map[Action]ActivityTemplate{
				ActionCreate: {Title: "Nouvelle commande", Description: "Commande #{name} créée", Icon: "fa-shopping-cart", Color: "#FF9800"},
				ActionUpdate: {Title: "Commande mise à jour", Description: "Statut mis à jour pour #{name}", Icon: "fa-shopping-cart", Color: "#2196F3"},
				ActionDelete: {Title: "Commande supprimée", Description: "Commande #{id} supprimée", Icon: "fa-trash", Color: "#F44336"},
			},
			Fallback: ActivityTemplate{Title: "Commandes : {action}", Icon: "fa-shopping-cart", Color: "#FF9800"},
			DisplayName: func(r Record) string {
				return orDefault(r.Text("orderNumber"), r.ID())
			},
			Defaults: func(r Record, now time.Time, rnd *rand.Rand) {
				if r.Text("orderNumber") == "" {
					r["orderNumber"] = fmt.Sprintf("ORD-%06d", rnd.IntN(1000000))
				}
				if r.Text("orderDate") == "" {
					r["orderDate"] = now.UTC().Format(time.DateOnly)
				}
			},
		},
		{
			Kind:     Customers,
			Singular: "Client",
			Plural:   "Clients",
			Icon:     "fa-user-tie",
			Fields: []Field{
				{Name: "name", Label: "Nom", Type: FieldText, Required: true},
				{Name: "email", Label: "Email", Type: FieldEmail, Required: true},
				{Name: "phone", Label: "Téléphone", Type: FieldTel, Required: true},
				{Name: "company", Label: "Entreprise", Type: FieldText},
				{Name: "status", Label: "Statut", Type: FieldSelect, Options: []string{"active", "inactive"}, Required: true},
			},
			Columns: []Column{
				{Label: "ID", Keys: []string{"id"}},
				{Label: "Nom", Keys: []string{"name"}},
				{Label: "Email", Keys: []string{"email"}},
				{Label: "Téléphone", Keys: []string{"phone"}},
				{Label: "Entreprise", Keys: []string{"company"}},
				statusBadge,
			},
			SearchFields: []string{"name", "email", "company"},
			ExportFields: []ExportField{
				{Label: "ID", Key: "id"},
				{Label: "Nom", Key: "name"},
				{Label: "Email", Key: "email"},
				{Label: "Téléphone", Key: "phone"},
				{Label: "Entreprise", Key: "company"},
				{Label: "Pays", Key: "country"},
				{Label: "Statut", Key: "status"},
			},
			Fallback: defaultActivity,
			DisplayName: func(r Record) string {
				return orDefault(r.Text("name"), r.ID())
			},
		},
		{
			Kind:     Invoices,
			Singular: "Facture",
			Plural:   "Factures",
			Icon:     "fa-file-invoice",
			Fields: []Field{
				{Name: "client", Label: "Client", Type: FieldText, Required: true},
				{Name: "amount", Label: "Montant", Type: FieldText, Required: true},
				{Name: "status", Label: "Statut", Type: FieldSelect, Options: []string{"paid", "pending", "overdue"}, Required: true},
				{Name: "dueDate", Label: "Date d'échéance", Type: FieldDate, Required: true},
				{Name: "notes", Label: "Notes", Type: FieldTextarea},
			},
			Columns: []Column{
				{Label: "ID", Keys: []string{"id"}},
				{Label: "N° facture", Keys: []string{"invoiceNumber"}},
				{Label: "Client", Keys: []string{"client", "customerName"}},
				{Label: "Montant", Keys: []string{"amount"}, Format: FormatPrice},
				statusBadge,
				{Label: "Émission", Keys: []string{"date", "issueDate"}, Format: FormatDate},
				{Label: "Échéance", Keys: []string{"dueDate"}, Format: FormatDate},
			},
			SearchFields: []string{"invoiceNumber", "customerName"},
			ExportFields: []ExportField{
				{Label: "ID", Key: "id"},
				{Label: "N° facture", Key: "invoiceNumber"},
				{Label: "Client", Key: "customerName"},
				{Label: "Montant", Key: "amount"},
				{Label: "Émission", Key: "issueDate"},
				{Label: "Échéance", Key: "dueDate"},
				{Label: "Statut", Key: "status"},
			},
			MarkdownFields: []string{"notes"},
			Fallback:       defaultActivity,
			DisplayName: func(r Record) string {
				return orDefault(r.Text("invoiceNumber"), r.ID())
			},
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
