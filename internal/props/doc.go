// Package props encodes table definitions to and from the flat
// .properties format.
//
// A definition is stored as namespaced keys:
//
//	columns=id name status amount
//	column.id.displayName=ID
//	column.id.dataType=Number
//	column.id.editType=None
//	column.status.valueQuery=SELECT code FROM statuses
//	filter.rows=3
//	filter.row0=name status
//	filter.row1=
//	filter.row2=amount
//	filter.name.type=Text
//	filter.status.type=Dropdown
//	filter.amount.type=Range
//	keyFields=id
//	updateTable=orders
//	query=SELECT * FROM orders
//
// Order lives inside the values of columns and filter.row<N>; line order
// carries no meaning. Band 1 above holds no filters; a missing
// filter.row<N> key reads the same as an empty one.
package props
