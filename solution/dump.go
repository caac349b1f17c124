// SPDX-License-Identifier: MIT

package solution

import (
	"bufio"
	"io"
	"strconv"
)

// FormatFloat renders x with 15 significant digits, the precision used by
// every text output of this module.
func FormatFloat(x float64) string { return strconv.FormatFloat(x, 'g', 15, 64) }

// WriteAssignment renders the solution as four plain-text sections:
//
//	OBJECTIVE
//	<objective>
//
//	P LOCATIONS
//	<loc>...
//
//	LOCATION USAGES
//	location (usage/capacity)
//	<loc> (<usage>/<capacity>)...
//
//	CUSTOMER ASSIGNMENTS
//	customer (demand) -> location (assigned demand)
//	<cust> (<demand>) -> <loc> (<qty>) ...
func (s *Solution) WriteAssignment(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("OBJECTIVE\n")
	bw.WriteString(FormatFloat(s.objective))
	bw.WriteString("\n\nP LOCATIONS\n")
	for _, loc := range s.open.ids {
		bw.WriteString(strconv.Itoa(loc))
		bw.WriteByte('\n')
	}

	bw.WriteString("\nLOCATION USAGES\nlocation (usage/capacity)\n")
	for _, loc := range s.open.ids {
		bw.WriteString(strconv.Itoa(loc))
		bw.WriteString(" (")
		bw.WriteString(strconv.Itoa(s.usage[loc]))
		bw.WriteByte('/')
		bw.WriteString(strconv.Itoa(s.inst.Capacity(loc)))
		bw.WriteString(")\n")
	}

	bw.WriteString("\nCUSTOMER ASSIGNMENTS\ncustomer (demand) -> location (assigned demand)\n")
	for _, cust := range s.inst.Customers() {
		bw.WriteString(strconv.Itoa(cust))
		bw.WriteString(" (")
		bw.WriteString(strconv.Itoa(s.inst.Demand(cust)))
		bw.WriteString(") ->")
		for _, a := range s.assignments[cust] {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(a.Location))
			bw.WriteString(" (")
			bw.WriteString(strconv.Itoa(a.Quantity))
			bw.WriteByte(')')
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
