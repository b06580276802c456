package access

import "github.com/garagecrm/access-api/internal/core/domain"

// managerExclusions are the critical business operations a MANAGER cannot
// perform: destructive accounting actions, company edits and member removal.
var managerExclusions = []domain.Permission{
	domain.PermDeleteCompanyDocuments,
	domain.PermRemoveMembers,
	domain.PermEditCompany,
	domain.PermEditSettings,
	domain.PermDeleteBankAccounts,
	domain.PermDeleteBankTransactions,
	domain.PermDeleteExpenses,
	domain.PermDeleteInventory,
	domain.PermDeleteTaxDocuments,
	domain.PermDeletePayroll,
	domain.PermDeleteLegalDocuments,
	domain.PermDeleteLitigation,
}

var accountantPermissions = []domain.Permission{
	domain.PermViewDashboard,
	domain.PermViewContacts,
	domain.PermViewVehicles,
	domain.PermViewQuotes, domain.PermCreateQuotes, domain.PermEditQuotes, domain.PermSendQuotes,
	domain.PermViewInvoices, domain.PermCreateInvoices, domain.PermEditInvoices, domain.PermSendInvoices,
	domain.PermViewCatalog,
	domain.PermViewReports,
	domain.PermViewCompany,
	domain.PermViewAccounting,
	domain.PermViewBankAccounts, domain.PermCreateBankAccounts, domain.PermEditBankAccounts, domain.PermReconcileBankAccounts,
	domain.PermViewBankTransactions, domain.PermCreateBankTransactions, domain.PermEditBankTransactions,
	domain.PermViewExpenses, domain.PermCreateExpenses, domain.PermEditExpenses, domain.PermApproveExpenses,
	domain.PermViewInventory, domain.PermCreateInventory, domain.PermEditInventory,
	domain.PermViewTaxDocuments, domain.PermUploadTaxDocuments,
	domain.PermViewPayroll, domain.PermUploadPayroll,
	domain.PermViewLegalDocuments, domain.PermUploadLegalDocuments,
	domain.PermViewLitigation, domain.PermCreateLitigation, domain.PermEditLitigation,
	domain.PermViewFinancialReports, domain.PermGenerateFinancialReports,
}

var userPermissions = []domain.Permission{
	domain.PermViewDashboard,
	domain.PermViewContacts, domain.PermCreateContacts, domain.PermEditContacts,
	domain.PermViewVehicles, domain.PermCreateVehicles, domain.PermEditVehicles,
	domain.PermViewQuotes, domain.PermCreateQuotes,
	domain.PermViewInvoices,
	domain.PermViewTasks, domain.PermCreateTasks, domain.PermEditTasks,
	domain.PermViewCatalog,
	domain.PermViewPlanning, domain.PermEditPlanning,
	domain.PermViewCommunications, domain.PermSendMessages,
	domain.PermViewEmails, domain.PermSendEmails,
	domain.PermUseAIAssistant,
}

// grant is one row of the matrix: the ordered list used for listings and the
// set used for membership checks.
type grant struct {
	ordered []domain.Permission
	set     map[domain.Permission]struct{}
}

// matrix is built once at package init and only read afterwards.
var matrix = map[domain.Role]grant{
	domain.RoleSuperAdmin: newGrant(domain.AllPermissions()),
	domain.RoleOwner:      newGrant(domain.AllPermissions()),
	domain.RoleManager:    newGrant(without(domain.AllPermissions(), managerExclusions)),
	domain.RoleAccountant: newGrant(inVocabularyOrder(accountantPermissions)),
	domain.RoleUser:       newGrant(inVocabularyOrder(userPermissions)),
}

func newGrant(perms []domain.Permission) grant {
	set := make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return grant{ordered: perms, set: set}
}

func without(perms, excluded []domain.Permission) []domain.Permission {
	drop := make(map[domain.Permission]struct{}, len(excluded))
	for _, p := range excluded {
		drop[p] = struct{}{}
	}
	out := make([]domain.Permission, 0, len(perms))
	for _, p := range perms {
		if _, ok := drop[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func inVocabularyOrder(perms []domain.Permission) []domain.Permission {
	keep := make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		keep[p] = struct{}{}
	}
	out := make([]domain.Permission, 0, len(perms))
	for _, p := range domain.AllPermissions() {
		if _, ok := keep[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

var labels = map[domain.Role]string{
	domain.RoleSuperAdmin: "Super Administrateur",
	domain.RoleOwner:      "Propriétaire",
	domain.RoleManager:    "Manager",
	domain.RoleAccountant: "Comptable",
	domain.RoleUser:       "Employé",
}

var descriptions = map[domain.Role]string{
	domain.RoleSuperAdmin: "Accès complet à toutes les fonctionnalités",
	domain.RoleOwner:      "Propriétaire de l'entreprise avec accès complet",
	domain.RoleManager:    "Gestion complète sauf paramètres critiques",
	domain.RoleAccountant: "Accès complet au module comptabilité, devis, factures et rapports",
	domain.RoleUser:       "Employé avec accès aux fonctionnalités de base",
}
