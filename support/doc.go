// Package support provides the three customer-support tools the agent may
// invoke: process_refund, contact_delivery_partner and
// escalate_to_support_admin. The set is closed; Kind enumerates it so callers
// can switch over it exhaustively.
package support
