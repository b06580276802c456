package domain

import "strings"

// Permission names one action on one resource, spelled verb_resource.
type Permission string

const (
	PermViewDashboard Permission = "view_dashboard"

	PermViewContacts   Permission = "view_contacts"
	PermCreateContacts Permission = "create_contacts"
	PermEditContacts   Permission = "edit_contacts"
	PermDeleteContacts Permission = "delete_contacts"

	PermViewVehicles   Permission = "view_vehicles"
	PermCreateVehicles Permission = "create_vehicles"
	PermEditVehicles   Permission = "edit_vehicles"
	PermDeleteVehicles Permission = "delete_vehicles"

	PermViewQuotes   Permission = "view_quotes"
	PermCreateQuotes Permission = "create_quotes"
	PermEditQuotes   Permission = "edit_quotes"
	PermDeleteQuotes Permission = "delete_quotes"
	PermSendQuotes   Permission = "send_quotes"

	PermViewInvoices   Permission = "view_invoices"
	PermCreateInvoices Permission = "create_invoices"
	PermEditInvoices   Permission = "edit_invoices"
	PermDeleteInvoices Permission = "delete_invoices"
	PermSendInvoices   Permission = "send_invoices"

	PermViewTasks   Permission = "view_tasks"
	PermCreateTasks Permission = "create_tasks"
	PermEditTasks   Permission = "edit_tasks"
	PermDeleteTasks Permission = "delete_tasks"

	PermViewCatalog Permission = "view_catalog"
	PermEditCatalog Permission = "edit_catalog"

	PermViewPlanning Permission = "view_planning"
	PermEditPlanning Permission = "edit_planning"

	PermViewCommunications Permission = "view_communications"
	PermSendMessages       Permission = "send_messages"

	PermViewEmails Permission = "view_emails"
	PermSendEmails Permission = "send_emails"

	PermUseAIAssistant Permission = "use_ai_assistant"

	PermViewReports Permission = "view_reports"

	PermViewProjects   Permission = "view_projects"
	PermCreateProjects Permission = "create_projects"
	PermEditProjects   Permission = "edit_projects"
	PermDeleteProjects Permission = "delete_projects"

	PermViewCompanyDocuments   Permission = "view_company_documents"
	PermUploadCompanyDocuments Permission = "upload_company_documents"
	PermDeleteCompanyDocuments Permission = "delete_company_documents"

	PermViewTeam      Permission = "view_team"
	PermInviteMembers Permission = "invite_members"
	PermEditMembers   Permission = "edit_members"
	PermRemoveMembers Permission = "remove_members"

	PermViewCompany Permission = "view_company"
	PermEditCompany Permission = "edit_company"

	PermViewSettings Permission = "view_settings"
	PermEditSettings Permission = "edit_settings"

	PermViewAccounting Permission = "view_accounting"

	PermViewBankAccounts      Permission = "view_bank_accounts"
	PermCreateBankAccounts    Permission = "create_bank_accounts"
	PermEditBankAccounts      Permission = "edit_bank_accounts"
	PermDeleteBankAccounts    Permission = "delete_bank_accounts"
	PermReconcileBankAccounts Permission = "reconcile_bank_accounts"

	PermViewBankTransactions   Permission = "view_bank_transactions"
	PermCreateBankTransactions Permission = "create_bank_transactions"
	PermEditBankTransactions   Permission = "edit_bank_transactions"
	PermDeleteBankTransactions Permission = "delete_bank_transactions"

	PermViewExpenses    Permission = "view_expenses"
	PermCreateExpenses  Permission = "create_expenses"
	PermEditExpenses    Permission = "edit_expenses"
	PermApproveExpenses Permission = "approve_expenses"
	PermDeleteExpenses  Permission = "delete_expenses"

	PermViewInventory   Permission = "view_inventory"
	PermCreateInventory Permission = "create_inventory"
	PermEditInventory   Permission = "edit_inventory"
	PermDeleteInventory Permission = "delete_inventory"

	PermViewTaxDocuments   Permission = "view_tax_documents"
	PermUploadTaxDocuments Permission = "upload_tax_documents"
	PermDeleteTaxDocuments Permission = "delete_tax_documents"

	PermViewPayroll   Permission = "view_payroll"
	PermUploadPayroll Permission = "upload_payroll"
	PermDeletePayroll Permission = "delete_payroll"

	PermViewLegalDocuments   Permission = "view_legal_documents"
	PermUploadLegalDocuments Permission = "upload_legal_documents"
	PermDeleteLegalDocuments Permission = "delete_legal_documents"

	PermViewLitigation   Permission = "view_litigation"
	PermCreateLitigation Permission = "create_litigation"
	PermEditLitigation   Permission = "edit_litigation"
	PermDeleteLitigation Permission = "delete_litigation"

	PermViewFinancialReports     Permission = "view_financial_reports"
	PermGenerateFinancialReports Permission = "generate_financial_reports"
)

// PermissionGroup is a UI section of the vocabulary.
type PermissionGroup struct {
	Key         string       `json:"key"`
	Permissions []Permission `json:"permissions"`
}

var permissionGroups = []PermissionGroup{
	{"dashboard", []Permission{PermViewDashboard}},
	{"contacts", []Permission{PermViewContacts, PermCreateContacts, PermEditContacts, PermDeleteContacts}},
	{"vehicles", []Permission{PermViewVehicles, PermCreateVehicles, PermEditVehicles, PermDeleteVehicles}},
	{"quotes", []Permission{PermViewQuotes, PermCreateQuotes, PermEditQuotes, PermDeleteQuotes, PermSendQuotes}},
	{"invoices", []Permission{PermViewInvoices, PermCreateInvoices, PermEditInvoices, PermDeleteInvoices, PermSendInvoices}},
	{"tasks", []Permission{PermViewTasks, PermCreateTasks, PermEditTasks, PermDeleteTasks}},
	{"catalog", []Permission{PermViewCatalog, PermEditCatalog}},
	{"planning", []Permission{PermViewPlanning, PermEditPlanning}},
	{"communications", []Permission{PermViewCommunications, PermSendMessages}},
	{"emails", []Permission{PermViewEmails, PermSendEmails}},
	{"ai_assistant", []Permission{PermUseAIAssistant}},
	{"reports", []Permission{PermViewReports}},
	{"projects", []Permission{PermViewProjects, PermCreateProjects, PermEditProjects, PermDeleteProjects}},
	{"company_documents", []Permission{PermViewCompanyDocuments, PermUploadCompanyDocuments, PermDeleteCompanyDocuments}},
	{"team", []Permission{PermViewTeam, PermInviteMembers, PermEditMembers, PermRemoveMembers}},
	{"company", []Permission{PermViewCompany, PermEditCompany}},
	{"settings", []Permission{PermViewSettings, PermEditSettings}},
	{"accounting", []Permission{PermViewAccounting}},
	{"bank_accounts", []Permission{PermViewBankAccounts, PermCreateBankAccounts, PermEditBankAccounts, PermDeleteBankAccounts, PermReconcileBankAccounts}},
	{"bank_transactions", []Permission{PermViewBankTransactions, PermCreateBankTransactions, PermEditBankTransactions, PermDeleteBankTransactions}},
	{"expenses", []Permission{PermViewExpenses, PermCreateExpenses, PermEditExpenses, PermApproveExpenses, PermDeleteExpenses}},
	{"inventory", []Permission{PermViewInventory, PermCreateInventory, PermEditInventory, PermDeleteInventory}},
	{"tax_documents", []Permission{PermViewTaxDocuments, PermUploadTaxDocuments, PermDeleteTaxDocuments}},
	{"payroll", []Permission{PermViewPayroll, PermUploadPayroll, PermDeletePayroll}},
	{"legal_documents", []Permission{PermViewLegalDocuments, PermUploadLegalDocuments, PermDeleteLegalDocuments}},
	{"litigation", []Permission{PermViewLitigation, PermCreateLitigation, PermEditLitigation, PermDeleteLitigation}},
	{"financial_reports", []Permission{PermViewFinancialReports, PermGenerateFinancialReports}},
}

var (
	allPermissions []Permission
	knownPerms     map[Permission]struct{}
)

func init() {
	knownPerms = make(map[Permission]struct{})
	for _, g := range permissionGroups {
		for _, p := range g.Permissions {
			allPermissions = append(allPermissions, p)
			knownPerms[p] = struct{}{}
		}
	}
}

// AllPermissions returns the whole vocabulary in declaration order.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// PermissionGroups returns the vocabulary grouped by UI section.
func PermissionGroups() []PermissionGroup {
	out := make([]PermissionGroup, len(permissionGroups))
	for i, g := range permissionGroups {
		perms := make([]Permission, len(g.Permissions))
		copy(perms, g.Permissions)
		out[i] = PermissionGroup{Key: g.Key, Permissions: perms}
	}
	return out
}

// Valid reports whether p belongs to the vocabulary.
func (p Permission) Valid() bool {
	_, ok := knownPerms[p]
	return ok
}

// Verb is the action part of the tag ("delete" for delete_bank_accounts).
func (p Permission) Verb() string {
	verb, _, _ := strings.Cut(string(p), "_")
	return verb
}

// Resource is the object part of the tag ("bank_accounts" for delete_bank_accounts).
func (p Permission) Resource() string {
	_, resource, _ := strings.Cut(string(p), "_")
	return resource
}

// ParsePermission converts an untrusted string into a known permission.
func ParsePermission(s string) (Permission, bool) {
	p := Permission(strings.TrimSpace(s))
	return p, p.Valid()
}
