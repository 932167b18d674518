package orgscope

// Report messages. The English text doubles as the translation key.
const (
	MsgHeader = "Incompatible companies on records:"

	// args: company, field description, field name, values
	MsgCompanyRecord = "- Record is company %[1]q and %[2]q (%[3]s: %[4]s) belongs to another company."

	// args: record, company, field description, field name, values
	MsgRecord = "- %[1]q belongs to company %[2]q and %[3]q (%[4]s: %[5]s) belongs to another company."

	// args: record, company
	MsgRootCompany = "- Only a root company can be set on %[1]q. Currently set to %[2]q"
)

// Messages lists every translatable report message
var Messages = []string{MsgHeader, MsgCompanyRecord, MsgRecord, MsgRootCompany}
