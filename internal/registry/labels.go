package registry

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// roleLabels maps roles to the French display strings used across the
// console.
var roleLabels = map[Role]string{
	RoleUser:             "Utilisateur",
	RoleAnalyst:          "Analyste",
	RoleModerator:        "Modérateur",
	RoleStructureManager: "Gestionnaire de structure",
	RoleSectorManager:    "Gestionnaire de secteur",
	RoleAdmin:            "Administrateur",
	RoleSuperAdmin:       "Super administrateur",
}

var permissionLabels = map[Permission]string{
	PermViewUsers:             "Voir les utilisateurs",
	PermCreateUsers:           "Créer des utilisateurs",
	PermEditUsers:             "Modifier les utilisateurs",
	PermDeleteUsers:           "Supprimer les utilisateurs",
	PermViewComplaints:        "Voir les plaintes",
	PermManageComplaintStatus: "Gérer le statut des plaintes",
	PermDeleteComplaints:      "Supprimer les plaintes",
	PermViewStructures:        "Voir les structures",
	PermManageStructures:      "Gérer les structures",
	PermViewSectors:           "Voir les secteurs",
	PermManageSectors:         "Gérer les secteurs",
	PermViewStats:             "Voir les statistiques",
	PermViewHistory:           "Voir l'historique",
	PermExportData:            "Exporter les données",
}

var labelCaser = cases.Title(language.French)

// RoleLabel returns the display label for a role. Unknown roles get a
// humanized form of the raw tag instead of a crash; the upstream data
// is not consistent about which tags carry labels.
func RoleLabel(role Role) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return humanize(string(role))
}

// PermissionLabel returns the display label for a permission, falling
// back to a humanized tag for unknown values.
func PermissionLabel(perm Permission) string {
	if label, ok := permissionLabels[perm]; ok {
		return label
	}
	return humanize(string(perm))
}

func humanize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "Inconnu"
	}
	return labelCaser.String(strings.ReplaceAll(tag, "_", " "))
}
