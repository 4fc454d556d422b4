// Package models defines flow type definitions to avoid circular imports.
package models

// FlowType represents a specific type of dialog flow
type FlowType string

// StateType represents a specific state within a flow
type StateType string

// DataKey represents a key for storing state-specific data
type DataKey string

// Flow type constants.
const (
	FlowTypeOrder FlowType = "order"
)

// State constants for the order dialog flow. Exactly one question is pending
// at any time; StateNone means the dialog is dormant and awaiting a new order.
const (
	StateItem    StateType = "ITEM"
	StateName    StateType = "NAME"
	StateAge     StateType = "AGE"
	StateAddress StateType = "ADDRESS"
	StateNone    StateType = "NONE"
)

// Data key constants for the order dialog's accumulated slot values.
const (
	DataKeyItemNumber DataKey = "itemNumber"
	DataKeyName       DataKey = "name"
	DataKeyAge        DataKey = "age"
	DataKeyAddress    DataKey = "address"
)
