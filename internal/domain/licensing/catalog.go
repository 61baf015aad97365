// Package licensing contiene el catálogo estático de módulos del CMMS:
// definiciones, conjunto core, mapa de suscripciones y dependencias.
// No tiene dependencias externas ni acceso a persistencia.
package licensing

// ModuleCode identifica un módulo funcional licenciable.
type ModuleCode string

// ModuleTier clasifica un módulo dentro del catálogo.
type ModuleTier string

// SubscriptionTier es el plan comercial de una organización.
type SubscriptionTier string

const (
	TierCore     ModuleTier = "core"
	TierStandard ModuleTier = "standard"
	TierAdvanced ModuleTier = "advanced"
	TierPremium  ModuleTier = "premium"
)

const (
	SubscriptionStarter        SubscriptionTier = "starter"
	SubscriptionProfessional   SubscriptionTier = "professional"
	SubscriptionEnterprise     SubscriptionTier = "enterprise"
	SubscriptionEnterprisePlus SubscriptionTier = "enterprise_plus"
)

// Core
const (
	UserManagement       ModuleCode = "user_management"
	AssetManagementBasic ModuleCode = "asset_management_basic"
	WorkOrderBasic       ModuleCode = "work_order_basic"
	InventoryManagement  ModuleCode = "inventory_management"
	MobileBasic          ModuleCode = "mobile_basic"
	MobileAdvanced       ModuleCode = "mobile_advanced"
	BasicReporting       ModuleCode = "basic_reporting"
)

// Standard
const (
	PreventiveMaintenance   ModuleCode = "preventive_maintenance"
	SchedulingPlanning      ModuleCode = "scheduling_planning"
	AssetManagementAdvanced ModuleCode = "asset_management_advanced"
	WorkOrderAdvanced       ModuleCode = "work_order_advanced"
	DocumentManagement      ModuleCode = "document_management"
	MeterReading            ModuleCode = "meter_reading"
)

// Advanced
const (
	PredictiveMaintenance ModuleCode = "predictive_maintenance"
	PurchasingProcurement ModuleCode = "purchasing_procurement"
	AdvancedAnalytics     ModuleCode = "advanced_analytics"
	SafetyCompliance      ModuleCode = "safety_compliance"
	CalibrationManagement ModuleCode = "calibration_management"
	FailureAnalysis       ModuleCode = "failure_analysis"
	ProjectManagement     ModuleCode = "project_management"
	EnergyManagement      ModuleCode = "energy_management"
)

// Premium
const (
	VendorManagement ModuleCode = "vendor_management"
	AuditQuality     ModuleCode = "audit_quality"
	IntegrationHub   ModuleCode = "integration_hub"
	MultiTenancy     ModuleCode = "multi_tenancy"
	AdvancedWorkflow ModuleCode = "advanced_workflow"
	AIOptimization   ModuleCode = "ai_optimization"
)

// ModuleDefinition describe un módulo del catálogo.
type ModuleDefinition struct {
	Code         ModuleCode   `json:"code"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Tier         ModuleTier   `json:"tier"`
	Dependencies []ModuleCode `json:"dependencies,omitempty"`
	Features     []string     `json:"features"`
}

// catalogo en orden estable; ActivateTier recorre este orden, por eso cada
// módulo aparece después de sus dependencias.
var catalog = []ModuleDefinition{
	{Code: UserManagement, Name: "User Management", Tier: TierCore,
		Description: "Core user and role management",
		Features:    []string{"user_crud", "role_management", "permissions", "authentication"}},
	{Code: AssetManagementBasic, Name: "Asset Management Basic", Tier: TierCore,
		Description: "Basic asset tracking and management",
		Features:    []string{"asset_crud", "asset_hierarchy", "basic_specifications"}},
	{Code: WorkOrderBasic, Name: "Work Order Basic", Tier: TierCore,
		Description: "Basic work order management",
		Features:    []string{"work_order_crud", "basic_assignment", "status_tracking"}},
	{Code: InventoryManagement, Name: "Inventory Management", Tier: TierCore,
		Description: "Spare parts and inventory tracking",
		Features:    []string{"inventory_crud", "stock_levels", "reorder_points", "stock_transactions"}},
	{Code: MobileBasic, Name: "Mobile Basic", Tier: TierCore,
		Description: "Basic mobile access",
		Features:    []string{"mobile_work_orders", "mobile_asset_lookup"}},
	{Code: MobileAdvanced, Name: "Mobile Advanced", Tier: TierCore,
		Description: "Offline mobile access and field tools",
		Features:    []string{"offline_mode", "barcode_scanning", "photo_capture", "signature_capture"}},
	{Code: BasicReporting, Name: "Basic Reporting", Tier: TierCore,
		Description: "Standard operational reports",
		Features:    []string{"standard_reports", "export_csv"}},

	{Code: PreventiveMaintenance, Name: "Preventive Maintenance", Tier: TierStandard,
		Description: "Scheduled preventive maintenance programs",
		Features:    []string{"pm_schedules", "pm_tasks", "calendar_based", "meter_based"}},
	{Code: SchedulingPlanning, Name: "Scheduling & Planning", Tier: TierStandard,
		Description: "Resource scheduling and work planning",
		Features:    []string{"resource_calendar", "workload_balancing", "planning_board"}},
	{Code: AssetManagementAdvanced, Name: "Asset Management Advanced", Tier: TierStandard,
		Description: "Lifecycle, depreciation and criticality analysis",
		Features:    []string{"asset_lifecycle", "depreciation", "criticality_analysis", "warranty_tracking"}},
	{Code: WorkOrderAdvanced, Name: "Work Order Advanced", Tier: TierStandard,
		Description: "Advanced work order workflows",
		Features:    []string{"work_order_templates", "labor_tracking", "cost_tracking", "approvals"}},
	{Code: DocumentManagement, Name: "Document Management", Tier: TierStandard,
		Description: "Manuals, drawings and procedures",
		Features:    []string{"document_storage", "versioning", "document_linking"}},
	{Code: MeterReading, Name: "Meter Reading", Tier: TierStandard,
		Description: "Meter and counter readings",
		Features:    []string{"meter_readings", "reading_history", "meter_alerts"}},

	{Code: PredictiveMaintenance, Name: "Predictive Maintenance", Tier: TierAdvanced,
		Description:  "Condition monitoring and failure prediction",
		Dependencies: []ModuleCode{AssetManagementAdvanced, MeterReading},
		Features:     []string{"sensor_integration", "condition_monitoring", "predictive_alerts", "trend_analysis"}},
	{Code: PurchasingProcurement, Name: "Purchasing & Procurement", Tier: TierAdvanced,
		Description:  "Purchase requests and orders",
		Dependencies: []ModuleCode{InventoryManagement},
		Features:     []string{"purchase_requests", "purchase_orders", "approvals", "receiving"}},
	{Code: AdvancedAnalytics, Name: "Advanced Analytics", Tier: TierAdvanced,
		Description: "Custom reports and dashboards",
		Features:    []string{"custom_reports", "dashboards", "kpi_tracking", "data_export"}},
	{Code: SafetyCompliance, Name: "Safety & Compliance", Tier: TierAdvanced,
		Description:  "Incidents, inspections and permits",
		Dependencies: []ModuleCode{DocumentManagement},
		Features:     []string{"incident_tracking", "safety_inspections", "permits", "compliance_reports"}},
	{Code: CalibrationManagement, Name: "Calibration Management", Tier: TierAdvanced,
		Description:  "Instrument calibration tracking",
		Dependencies: []ModuleCode{AssetManagementAdvanced, DocumentManagement},
		Features:     []string{"calibration_schedules", "calibration_records", "certificates"}},
	{Code: FailureAnalysis, Name: "Failure Analysis", Tier: TierAdvanced,
		Description: "Failure reporting and root cause analysis",
		Features:    []string{"failure_codes", "root_cause_analysis", "mtbf_mttr"}},
	{Code: ProjectManagement, Name: "Project Management", Tier: TierAdvanced,
		Description:  "Maintenance projects and shutdowns",
		Dependencies: []ModuleCode{WorkOrderAdvanced},
		Features:     []string{"projects", "project_tasks", "gantt", "budget_tracking"}},
	{Code: EnergyManagement, Name: "Energy Management", Tier: TierAdvanced,
		Description:  "Energy consumption and utility tracking",
		Dependencies: []ModuleCode{MeterReading, AdvancedAnalytics},
		Features:     []string{"energy_readings", "utility_bills", "consumption_analysis"}},

	{Code: VendorManagement, Name: "Vendor Management", Tier: TierPremium,
		Description: "Vendors, contracts and performance",
		Features:    []string{"vendor_crud", "contracts", "vendor_performance"}},
	{Code: AuditQuality, Name: "Audit & Quality", Tier: TierPremium,
		Description: "Quality audits and findings",
		Features:    []string{"audits", "audit_findings", "corrective_actions"}},
	{Code: IntegrationHub, Name: "Integration Hub", Tier: TierPremium,
		Description: "ERP and third-party integrations",
		Features:    []string{"api_access", "webhooks", "erp_connectors"}},
	{Code: MultiTenancy, Name: "Multi-Tenancy", Tier: TierPremium,
		Description: "Multi-site and multi-company management",
		Features:    []string{"multi_site", "cross_site_reporting"}},
	{Code: AdvancedWorkflow, Name: "Advanced Workflow", Tier: TierPremium,
		Description: "Configurable workflow engine",
		Features:    []string{"workflow_designer", "custom_approvals", "automation_rules"}},
	{Code: AIOptimization, Name: "AI Optimization", Tier: TierPremium,
		Description: "AI assisted scheduling and recommendations",
		Features:    []string{"ai_recommendations", "schedule_optimization", "anomaly_detection"}},
}

var (
	byCode      map[ModuleCode]ModuleDefinition
	coreModules = []ModuleCode{
		UserManagement, AssetManagementBasic, WorkOrderBasic, InventoryManagement,
		MobileBasic, MobileAdvanced, BasicReporting,
	}
	coreSet map[ModuleCode]struct{}
)

var tierModules = map[SubscriptionTier][]ModuleCode{}

func init() {
	byCode = make(map[ModuleCode]ModuleDefinition, len(catalog))
	for _, d := range catalog {
		byCode[d.Code] = d
	}
	coreSet = make(map[ModuleCode]struct{}, len(coreModules))
	for _, c := range coreModules {
		coreSet[c] = struct{}{}
	}

	starter := append([]ModuleCode(nil), coreModules...)
	professional := append(append([]ModuleCode(nil), starter...),
		PreventiveMaintenance, SchedulingPlanning, AssetManagementAdvanced,
		WorkOrderAdvanced, DocumentManagement, MeterReading)
	enterprise := append(append([]ModuleCode(nil), professional...),
		PredictiveMaintenance, PurchasingProcurement, AdvancedAnalytics, SafetyCompliance,
		CalibrationManagement, FailureAnalysis, ProjectManagement, EnergyManagement)
	all := make([]ModuleCode, 0, len(catalog))
	for _, d := range catalog {
		all = append(all, d.Code)
	}

	tierModules[SubscriptionStarter] = starter
	tierModules[SubscriptionProfessional] = professional
	tierModules[SubscriptionEnterprise] = enterprise
	tierModules[SubscriptionEnterprisePlus] = all
}

// Definition devuelve la definición del módulo y si existe en el catálogo.
func Definition(code ModuleCode) (ModuleDefinition, bool) {
	d, ok := byCode[code]
	return d, ok
}

// IsKnown indica si el código pertenece al catálogo.
func IsKnown(code ModuleCode) bool {
	_, ok := byCode[code]
	return ok
}

// IsCore indica si el módulo está siempre disponible sin licencia.
func IsCore(code ModuleCode) bool {
	_, ok := coreSet[code]
	return ok
}

// CoreModules devuelve una copia del conjunto core.
func CoreModules() []ModuleCode {
	return append([]ModuleCode(nil), coreModules...)
}

// All devuelve el catálogo completo en orden estable.
func All() []ModuleDefinition {
	return append([]ModuleDefinition(nil), catalog...)
}

// ModulesForTier devuelve los módulos incluidos en un plan, en orden de catálogo.
// Un plan desconocido devuelve nil.
func ModulesForTier(tier SubscriptionTier) []ModuleCode {
	mods, ok := tierModules[tier]
	if !ok {
		return nil
	}
	return append([]ModuleCode(nil), mods...)
}

// Tiers lista los planes en orden ascendente.
func Tiers() []SubscriptionTier {
	return []SubscriptionTier{
		SubscriptionStarter, SubscriptionProfessional,
		SubscriptionEnterprise, SubscriptionEnterprisePlus,
	}
}

// ParseTier valida un plan recibido como texto.
func ParseTier(s string) (SubscriptionTier, bool) {
	t := SubscriptionTier(s)
	_, ok := tierModules[t]
	return t, ok
}
