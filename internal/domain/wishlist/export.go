package wishlist

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	Greeting = "Hola Compugeeks, me interesa cotizar los siguientes productos de su web:\n\n"
	Closing  = "Quedo atento a su respuesta."

	DefaultRecipient    = "51999999999"
	DefaultLinkTemplate = "whatsapp://send?phone={recipient}&text={text}"
)

// Exporter turns a wishlist into a pre-filled message link. Template must
// contain {text}; {recipient} is optional.
type Exporter struct {
	Template  string
	Recipient string
}

func NewExporter(template, recipient string) Exporter {
	if strings.TrimSpace(template) == "" {
		template = DefaultLinkTemplate
	}
	if strings.TrimSpace(recipient) == "" {
		recipient = DefaultRecipient
	}
	return Exporter{Template: template, Recipient: recipient}
}

func (e Exporter) Link(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	tpl := e.Template
	if tpl == "" {
		tpl = DefaultLinkTemplate
	}
	r := strings.NewReplacer(
		"{recipient}", encode(e.Recipient),
		"{text}", encode(Message(entries)),
	)
	return r.Replace(tpl)
}

// Message is the plain text enumerating every entry in order.
func Message(entries []Entry) string {
	var b strings.Builder
	b.WriteString(Greeting)
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s\n   Precio Web: S/ %s\n   ID: %s\n\n",
			i+1, e.Product.Name, e.Product.SellingPrice.Fixed(), shortID(e.Product.ID))
	}
	b.WriteString(Closing)
	return b.String()
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// encode percent-encodes s for a query value, spaces as %20.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
