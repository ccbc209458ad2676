// Package rest defines the JSON contract between the table server and its
// clients, and an HTTP client for it.
package rest

import "github.com/JonMunkholm/tabledef/internal/core"

// TableInfo is the wire form of a table definition.
type TableInfo struct {
	Columns     []ColumnInfo `json:"columns" yaml:"columns"`
	Filters     []FilterInfo `json:"filters" yaml:"filters"`
	Formats     []FormatInfo `json:"formats" yaml:"formats"`
	KeyFields   []string     `json:"keyFields" yaml:"keyFields"`
	Query       string       `json:"query,omitempty" yaml:"query,omitempty"`
	UpdateTable string       `json:"updateTable,omitempty" yaml:"updateTable,omitempty"`
}

// ColumnInfo is the wire form of a column.
type ColumnInfo struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	DataType    string `json:"dataType" yaml:"dataType"`
	EditType    string `json:"editType" yaml:"editType"`
	ValueQuery  string `json:"valueQuery,omitempty" yaml:"valueQuery,omitempty"`
}

// FilterInfo is the wire form of a filter and its grid cell.
type FilterInfo struct {
	ColumnName  string `json:"columnName" yaml:"columnName"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Type        string `json:"type" yaml:"type"`
	Row         int    `json:"row" yaml:"row"`
	Column      int    `json:"column" yaml:"column"`
}

// FormatInfo carries a column's display pattern.
type FormatInfo struct {
	ColumnName string `json:"columnName" yaml:"columnName"`
	Pattern    string `json:"pattern" yaml:"pattern"`
}

// UpdateInfo is one row change in an update request.
type UpdateInfo struct {
	Action string            `json:"action" yaml:"action"`
	Keys   map[string]string `json:"keys,omitempty" yaml:"keys,omitempty"`
	Values map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
}

// ServiceList is the body of the service listing endpoint.
type ServiceList struct {
	Servlet  string   `json:"servlet" yaml:"servlet"`
	Services []string `json:"services" yaml:"services"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ToChange converts a wire update into a core change.
func (u UpdateInfo) ToChange() core.Change {
	return core.Change{
		Action: core.ChangeAction(u.Action),
		Keys:   u.Keys,
		Values: u.Values,
	}
}

// ToChanges converts a batch of wire updates.
func ToChanges(updates []UpdateInfo) []core.Change {
	changes := make([]core.Change, len(updates))
	for i, u := range updates {
		changes[i] = u.ToChange()
	}
	return changes
}
