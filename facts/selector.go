package facts

import "github.com/dsh2dsh/edinet/client"

// Filing selection priority: an annual report that declares its XBRL
// package beats one that doesn't, and any annual report beats any
// quarterly one. The xbrlFlag is unreliable across vintages, which is
// why flagless filings stay selectable at lower priority.
var selectPriority = [...]func(*client.Document) bool{
	func(d *client.Document) bool { return d.Annual() && d.HasXBRL() },
	func(d *client.Document) bool { return d.Annual() },
	func(d *client.Document) bool { return d.PeriodicReport() && d.HasXBRL() },
	func(d *client.Document) bool { return d.PeriodicReport() },
}

// SelectBest picks the best filing of one company from a single date's
// submission list, stable within the listing order. The second return is
// false when the list has no periodic filing of that company: the caller
// advances to the next planned date.
func SelectBest(docs []client.Document, edinetCode string,
) (*client.Document, bool) {
	for _, match := range selectPriority {
		for i := range docs {
			doc := &docs[i]
			if doc.EdinetCode == edinetCode && match(doc) {
				return doc, true
			}
		}
	}
	return nil, false
}
