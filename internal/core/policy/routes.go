package policy

import "github.com/garagecrm/access-api/internal/core/domain"

var serviceRoutes = mustTable([]Entry{
	{"GET", "/health", Public()},
	{"GET", "/health/ready", Public()},
	{"GET", "/metrics", Public()},
	{"GET", "/swagger/*", Public()},

	{"POST", "/auth/register", Public()},
	{"POST", "/auth/login", Public()},
	{"POST", "/auth/invitations/:token/accept", Public()},
	{"POST", "/auth/logout", Authenticated()},

	{"GET", "/v1/me", Authenticated()},
	{"GET", "/v1/roles", Authenticated()},
	{"GET", "/v1/roles/:role", Authenticated()},
	{"GET", "/v1/permissions", Authenticated()},
	{"POST", "/v1/authz/check", Authenticated()},
	{"POST", "/v1/authz/routes/check", Authenticated()},

	{"GET", "/v1/team/members", Permission(domain.PermViewTeam)},
	{"GET", "/v1/team/members/:id", Permission(domain.PermViewTeam)},
	{"PATCH", "/v1/team/members/:id", Permission(domain.PermEditMembers)},
	{"DELETE", "/v1/team/members/:id", Permission(domain.PermRemoveMembers)},
	{"POST", "/v1/team/invitations", Permission(domain.PermInviteMembers)},

	{"GET", "/v1/security/events", Permission(domain.PermEditSettings)},
})

// ServiceRoutes is the policy of every route this service serves.
func ServiceRoutes() *Table { return serviceRoutes }

// crud expands the usual collection/item route pair of a CRM resource.
func crud(base string, view, create, edit, remove domain.Permission) []Entry {
	return []Entry{
		{"GET", base, Permission(view)},
		{"POST", base, Permission(create)},
		{"GET", base + "/:id", Permission(view)},
		{"PATCH", base + "/:id", Permission(edit)},
		{"DELETE", base + "/:id", Permission(remove)},
	}
}

func crmEntries() []Entry {
	var e []Entry
	e = append(e, crud("/api/contacts", domain.PermViewContacts, domain.PermCreateContacts, domain.PermEditContacts, domain.PermDeleteContacts)...)
	e = append(e, crud("/api/vehicles", domain.PermViewVehicles, domain.PermCreateVehicles, domain.PermEditVehicles, domain.PermDeleteVehicles)...)
	e = append(e, crud("/api/quotes", domain.PermViewQuotes, domain.PermCreateQuotes, domain.PermEditQuotes, domain.PermDeleteQuotes)...)
	e = append(e, Entry{"POST", "/api/quotes/:id/convert", Permission(domain.PermCreateInvoices)})
	e = append(e, Entry{"POST", "/api/quotes/:id/send", Permission(domain.PermSendQuotes)})
	e = append(e, crud("/api/invoices", domain.PermViewInvoices, domain.PermCreateInvoices, domain.PermEditInvoices, domain.PermDeleteInvoices)...)
	e = append(e, Entry{"POST", "/api/invoices/:id/send", Permission(domain.PermSendInvoices)})
	e = append(e, crud("/api/tasks", domain.PermViewTasks, domain.PermCreateTasks, domain.PermEditTasks, domain.PermDeleteTasks)...)
	e = append(e, crud("/api/projects", domain.PermViewProjects, domain.PermCreateProjects, domain.PermEditProjects, domain.PermDeleteProjects)...)
	e = append(e, crud("/api/catalog", domain.PermViewCatalog, domain.PermEditCatalog, domain.PermEditCatalog, domain.PermEditCatalog)...)
	e = append(e, crud("/api/planning/events", domain.PermViewPlanning, domain.PermEditPlanning, domain.PermEditPlanning, domain.PermEditPlanning)...)

	e = append(e,
		Entry{"GET", "/api/communications/conversations", Permission(domain.PermViewCommunications)},
		Entry{"POST", "/api/communications/conversations", Permission(domain.PermSendMessages)},
		Entry{"GET", "/api/communications/conversations/:id/messages", Permission(domain.PermViewCommunications)},
		Entry{"POST", "/api/communications/conversations/:id/messages", Permission(domain.PermSendMessages)},
		Entry{"POST", "/api/communications/email/send", Permission(domain.PermSendEmails)},

		Entry{"GET", "/api/email/accounts", Permission(domain.PermViewEmails)},
		Entry{"POST", "/api/email/accounts", Permission(domain.PermViewEmails)},
		Entry{"GET", "/api/email/messages", Permission(domain.PermViewEmails)},
		Entry{"POST", "/api/email/messages", Permission(domain.PermSendEmails)},

		Entry{"POST", "/api/ai/assistant", Permission(domain.PermUseAIAssistant)},
		Entry{"GET", "/api/reports", Permission(domain.PermViewReports)},
		Entry{"GET", "/api/dashboard/stats", Permission(domain.PermViewDashboard)},

		Entry{"GET", "/api/team", Permission(domain.PermViewTeam)},
		Entry{"GET", "/api/team/:id", Permission(domain.PermViewTeam)},
		Entry{"PATCH", "/api/team/:id", Permission(domain.PermEditMembers)},
		Entry{"DELETE", "/api/team/:id", Permission(domain.PermRemoveMembers)},
		Entry{"GET", "/api/team/invitations", Permission(domain.PermViewTeam)},
		Entry{"POST", "/api/team/invitations", Permission(domain.PermInviteMembers)},

		Entry{"GET", "/api/company", Permission(domain.PermViewCompany)},
		Entry{"PATCH", "/api/company", Permission(domain.PermEditCompany)},
		Entry{"GET", "/api/company/documents", Permission(domain.PermViewCompanyDocuments)},
		Entry{"POST", "/api/company/documents", Permission(domain.PermUploadCompanyDocuments)},
		Entry{"GET", "/api/company/documents/:id", Permission(domain.PermViewCompanyDocuments)},
		Entry{"DELETE", "/api/company/documents/:id", Permission(domain.PermDeleteCompanyDocuments)},

		Entry{"GET", "/api/settings/regional", Permission(domain.PermViewSettings)},
		Entry{"PATCH", "/api/settings/regional", Permission(domain.PermEditSettings)},
	)
	for _, s := range []string{"vat-rates", "payment-terms", "payment-methods", "task-categories"} {
		e = append(e, crud("/api/settings/"+s, domain.PermViewSettings, domain.PermEditSettings, domain.PermEditSettings, domain.PermEditSettings)...)
	}

	e = append(e, crud("/api/accounting/bank-accounts", domain.PermViewBankAccounts, domain.PermCreateBankAccounts, domain.PermEditBankAccounts, domain.PermDeleteBankAccounts)...)
	e = append(e, crud("/api/accounting/transactions", domain.PermViewBankTransactions, domain.PermCreateBankTransactions, domain.PermEditBankTransactions, domain.PermDeleteBankTransactions)...)
	e = append(e, crud("/api/accounting/expenses", domain.PermViewExpenses, domain.PermCreateExpenses, domain.PermEditExpenses, domain.PermDeleteExpenses)...)
	e = append(e, crud("/api/accounting/inventory", domain.PermViewInventory, domain.PermCreateInventory, domain.PermEditInventory, domain.PermDeleteInventory)...)
	e = append(e, crud("/api/accounting/litigation", domain.PermViewLitigation, domain.PermCreateLitigation, domain.PermEditLitigation, domain.PermDeleteLitigation)...)
	e = append(e,
		Entry{"GET", "/api/accounting", Permission(domain.PermViewAccounting)},
		Entry{"POST", "/api/accounting/expenses/:id/approve", Permission(domain.PermApproveExpenses)},
		Entry{"GET", "/api/accounting/reconciliation", Permission(domain.PermViewBankAccounts)},
		Entry{"POST", "/api/accounting/reconciliation", Permission(domain.PermReconcileBankAccounts)},
		Entry{"GET", "/api/accounting/documents/tax", Permission(domain.PermViewTaxDocuments)},
		Entry{"POST", "/api/accounting/documents/tax", Permission(domain.PermUploadTaxDocuments)},
		Entry{"DELETE", "/api/accounting/documents/tax/:id", Permission(domain.PermDeleteTaxDocuments)},
		Entry{"GET", "/api/accounting/documents/payroll", Permission(domain.PermViewPayroll)},
		Entry{"POST", "/api/accounting/documents/payroll", Permission(domain.PermUploadPayroll)},
		Entry{"DELETE", "/api/accounting/documents/payroll/:id", Permission(domain.PermDeletePayroll)},
		Entry{"GET", "/api/accounting/documents/legal", Permission(domain.PermViewLegalDocuments)},
		Entry{"POST", "/api/accounting/documents/legal", Permission(domain.PermUploadLegalDocuments)},
		Entry{"DELETE", "/api/accounting/documents/legal/:id", Permission(domain.PermDeleteLegalDocuments)},
		Entry{"GET", "/api/accounting/reports", Permission(domain.PermViewFinancialReports)},
		Entry{"POST", "/api/accounting/reports", Permission(domain.PermGenerateFinancialReports)},

		Entry{"GET", "/api/admin/audit-logs", Permission(domain.PermEditSettings)},
		Entry{"GET", "/api/admin/data-retention", Permission(domain.PermEditSettings)},
		Entry{"POST", "/api/admin/data-retention", Permission(domain.PermEditSettings)},

		Entry{"GET", "/api/auth/*", Public()},
		Entry{"POST", "/api/auth/*", Public()},
		Entry{"GET", "/api/auth/verify-email", Public()},
		Entry{"POST", "/api/webhooks/stripe", Public()},
		Entry{"POST", "/api/invitations/accept/:token", Public()},
		Entry{"GET", "/api/invitations/verify/:token", Public()},
		Entry{"POST", "/api/rgpd/dsar/request", Authenticated()},
		Entry{"GET", "/api/rgpd/consents", Authenticated()},
		Entry{"POST", "/api/rgpd/consents", Authenticated()},
	)
	return e
}

var crmRoutes = mustTable(crmEntries())

// CRMRoutes is the access policy of the CRM application's API, consulted by
// route handlers that live outside this service.
func CRMRoutes() *Table { return crmRoutes }
