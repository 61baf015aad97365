package licensing

// archivedTables asocia cada módulo con las tablas de dominio que se archivan
// cuando su licencia vence. El mapa es parcial: los módulos ausentes no
// tienen datos propios que archivar.
var archivedTables = map[ModuleCode][]string{
	PreventiveMaintenance: {"pm_schedules", "pm_tasks"},
	InventoryManagement:   {"inventory_items", "stock_transactions"},
	PurchasingProcurement: {"purchase_requests", "purchase_orders"},
	DocumentManagement:    {"documents", "document_versions"},
	CalibrationManagement: {"calibration_records"},
	SafetyCompliance:      {"safety_incidents", "safety_inspections"},
	VendorManagement:      {"vendors", "vendor_contracts"},
	PredictiveMaintenance: {"sensor_data", "predictive_alerts"},
	AdvancedAnalytics:     {"custom_reports", "dashboards"},
	ProjectManagement:     {"projects", "project_tasks"},
	EnergyManagement:      {"energy_readings", "utility_bills"},
	FailureAnalysis:       {"failure_reports", "root_cause_analyses"},
	AuditQuality:          {"audits", "audit_findings"},
}

// ArchivedTables devuelve las tablas del módulo. Nunca devuelve error: un
// módulo sin mapeo produce un slice vacío.
func ArchivedTables(code ModuleCode) []string {
	return append([]string{}, archivedTables[code]...)
}

// IsArchivedTable indica si la tabla pertenece a algún módulo archivable.
// Los adaptadores SQL lo usan antes de interpolar el nombre.
func IsArchivedTable(table string) bool {
	for _, tables := range archivedTables {
		for _, t := range tables {
			if t == table {
				return true
			}
		}
	}
	return false
}
