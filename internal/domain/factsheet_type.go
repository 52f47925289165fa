package domain

// FactSheetType is one of the catalog types the adapter offers convenience
// accessors for. The value is the literal sent as the GraphQL FactSheetType.
type FactSheetType string

// Supported fact sheet types. Organization and BusinessContext use the
// wire names of the LeanIX meta model (UserGroup, Process).
const (
	Application        FactSheetType = "Application"
	ITComponent        FactSheetType = "ITComponent"
	BusinessCapability FactSheetType = "BusinessCapability"
	Provider           FactSheetType = "Provider"
	Organization       FactSheetType = "UserGroup"
	BusinessContext    FactSheetType = "Process"
	Interface          FactSheetType = "Interface"
	DataObject         FactSheetType = "DataObject"
)

// AllFactSheetTypes returns the supported types in display order.
func AllFactSheetTypes() []FactSheetType {
	return []FactSheetType{
		Application,
		ITComponent,
		BusinessCapability,
		Provider,
		Organization,
		BusinessContext,
		Interface,
		DataObject,
	}
}

// Valid reports whether t is one of the supported types.
func (t FactSheetType) Valid() bool {
	switch t {
	case Application, ITComponent, BusinessCapability, Provider,
		Organization, BusinessContext, Interface, DataObject:
		return true
	}
	return false
}

// Label returns the plural name shown to users.
func (t FactSheetType) Label() string {
	switch t {
	case Application:
		return "Applications"
	case ITComponent:
		return "IT Components"
	case BusinessCapability:
		return "Business Capabilities"
	case Provider:
		return "Providers"
	case Organization:
		return "Organizations"
	case BusinessContext:
		return "Business Contexts"
	case Interface:
		return "Interfaces"
	case DataObject:
		return "Data Objects"
	default:
		return string(t)
	}
}

func (t FactSheetType) String() string {
	return string(t)
}
