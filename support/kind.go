package support

import "fmt"

// Kind identifies one of the support tools.
type Kind int

const (
	KindRefund Kind = iota
	KindContactRider
	KindEscalate
)

// Tool names as presented to the model.
const (
	RefundToolName       = "process_refund"
	ContactRiderToolName = "contact_delivery_partner"
	EscalateToolName     = "escalate_to_support_admin"
)

// Kinds returns every Kind in canonical order.
func Kinds() []Kind { return []Kind{KindRefund, KindContactRider, KindEscalate} }

// String returns the tool name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRefund:
		return RefundToolName
	case KindContactRider:
		return ContactRiderToolName
	case KindEscalate:
		return EscalateToolName
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a tool name onto its Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("support: unknown tool %q", name)
}
