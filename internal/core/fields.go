package core

import "strings"

// Field is a canonical ticket column. The set is closed: only headers that
// resolve through the synonym table populate a field.
type Field string

const (
	FieldPriority      Field = "priority"
	FieldServiceCode   Field = "service_code"
	FieldPOSCode       Field = "poscode"
	FieldAirline       Field = "airline"
	FieldRequestID     Field = "request_id"
	FieldContactName   Field = "contact_name"
	FieldPNRNo         Field = "pnrno"
	FieldFlowType      Field = "flow_type"
	FieldAction        Field = "action"
	FieldAdded         Field = "added"
	FieldCurrStatDate  Field = "curr_stat_date"
	FieldPendingReason Field = "pending_reason"
	FieldOwner         Field = "owner"
	FieldTicketNumber  Field = "ticket_number"
	FieldWorkDate      Field = "work_date"
)

// ConflictKey is the field used for deduplication and persistence upserts.
const ConflictKey = FieldTicketNumber

// FieldInfo describes how a canonical field is displayed and normalized.
type FieldInfo struct {
	Field Field
	Label string // Display label: "Ticket Number"
	Date  bool   // Normalized to canonical date text on build
}

// fieldInfos lists every canonical field in display order.
var fieldInfos = []FieldInfo{
	{Field: FieldPriority, Label: "Priority"},
	{Field: FieldServiceCode, Label: "Service Code"},
	{Field: FieldPOSCode, Label: "POSCode"},
	{Field: FieldAirline, Label: "Airline"},
	{Field: FieldRequestID, Label: "Request Id"},
	{Field: FieldContactName, Label: "Contact Name"},
	{Field: FieldPNRNo, Label: "PNRNO"},
	{Field: FieldFlowType, Label: "Flow Type"},
	{Field: FieldAction, Label: "Action"},
	{Field: FieldAdded, Label: "Added", Date: true},
	{Field: FieldCurrStatDate, Label: "Curr Stat Date", Date: true},
	{Field: FieldPendingReason, Label: "Pending Reason"},
	{Field: FieldOwner, Label: "Owner"},
	{Field: FieldTicketNumber, Label: "Ticket Number"},
	{Field: FieldWorkDate, Label: "Work Date", Date: true},
}

var fieldIndex = func() map[Field]FieldInfo {
	m := make(map[Field]FieldInfo, len(fieldInfos))
	for _, fi := range fieldInfos {
		m[fi.Field] = fi
	}
	return m
}()

// headerSynonyms maps a normalized header label to its canonical field.
// Keys are already lower-cased with single internal spaces.
var headerSynonyms = map[string]Field{
	"priority":             FieldPriority,
	"service code":         FieldServiceCode,
	"servicecode":          FieldServiceCode,
	"poscode":              FieldPOSCode,
	"airline":              FieldAirline,
	"request id":           FieldRequestID,
	"requestid":            FieldRequestID,
	"request-id":           FieldRequestID,
	"request_id":           FieldRequestID,
	"contact name":         FieldContactName,
	"pnrno":                FieldPNRNo,
	"flow type":            FieldFlowType,
	"action":               FieldAction,
	"added":                FieldAdded,
	"added date":           FieldAdded,
	"added datetime":       FieldAdded,
	"curr stat date":       FieldCurrStatDate,
	"curr stat datetime":   FieldCurrStatDate,
	"current status date":  FieldCurrStatDate,
	"pending reason":       FieldPendingReason,
	"owner":                FieldOwner,
	"ticket number":        FieldTicketNumber,
	"ticketnumber":         FieldTicketNumber,
	"ticket-number":        FieldTicketNumber,
	"ticket_no":            FieldTicketNumber,
	"ticketno":             FieldTicketNumber,
	"work_date":            FieldWorkDate,
	"work date":            FieldWorkDate,
}

func init() {
	// Every canonical key resolves to itself so exported data re-imports cleanly.
	for _, fi := range fieldInfos {
		if _, ok := headerSynonyms[string(fi.Field)]; !ok {
			headerSynonyms[string(fi.Field)] = fi.Field
		}
	}
}

// Fields returns all canonical fields in display order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, len(fieldInfos))
	copy(out, fieldInfos)
	return out
}

// LookupField returns metadata for a canonical field.
func LookupField(f Field) (FieldInfo, bool) {
	fi, ok := fieldIndex[f]
	return fi, ok
}

// ParseField resolves a field key ("ticket_number") or any header synonym.
func ParseField(s string) (Field, bool) {
	if _, ok := fieldIndex[Field(s)]; ok {
		return Field(s), true
	}
	return ResolveHeader(s)
}

// Label returns the display label, or the raw key for unknown fields.
func (f Field) Label() string {
	if fi, ok := fieldIndex[f]; ok {
		return fi.Label
	}
	return string(f)
}

// IsDate reports whether values of the field are canonicalized as dates.
func (f Field) IsDate() bool {
	return fieldIndex[f].Date
}

// NormalizeHeader collapses whitespace runs, trims and lower-cases a label.
func NormalizeHeader(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// ResolveHeader maps a raw column label to its canonical field.
// Unknown labels return false; callers drop those columns.
func ResolveHeader(raw string) (Field, bool) {
	f, ok := headerSynonyms[NormalizeHeader(raw)]
	return f, ok
}

// HeaderMap is the per-sheet column → field resolution. Unmapped columns hold "".
type HeaderMap []Field

// MapHeader resolves a header row once per sheet.
func MapHeader(header Row) HeaderMap {
	m := make(HeaderMap, len(header))
	for i, c := range header {
		if f, ok := ResolveHeader(c.String()); ok {
			m[i] = f
		}
	}
	return m
}

// Column returns the first column mapped to f, or -1.
func (m HeaderMap) Column(f Field) int {
	for i, mf := range m {
		if mf == f {
			return i
		}
	}
	return -1
}

// Fields returns the distinct fields present, in column order.
func (m HeaderMap) Fields() []Field {
	seen := make(map[Field]bool, len(m))
	var out []Field
	for _, f := range m {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
