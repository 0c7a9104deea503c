package statement

import (
	"bytes"
	"html/template"
)

var statementTemplate = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Settlement Statement - Vendor {{.VendorID}} - {{.PeriodKey}}</title>
	<style>
		body { font-family: sans-serif; margin: 2rem; color: #1a1a1a; }
		h1 { font-size: 1.3rem; }
		table { border-collapse: collapse; margin-top: 1rem; }
		td, th { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
		th { background: #f4f4f4; text-align: left; }
		.headline { margin-top: 1.5rem; font-weight: bold; }
		.settled { color: #2b7a2b; }
	</style>
</head>
<body>
	<h1>Settlement Statement</h1>
	<p>Vendor {{.VendorID}} &middot; Period {{.PeriodKey}} ({{.StartDate.Format "2 Jan 2006"}} &ndash; {{.EndDate.Format "2 Jan 2006"}}, exclusive)</p>
	<table>
		<tr><th>Online channel receipts</th><td>{{.OnlineReceived}}</td></tr>
		<tr><th>Pay-at-property receipts</th><td>{{.HotelReceived}}</td></tr>
		<tr><th>Total sales</th><td>{{.TotalSales}}</td></tr>
		<tr><th>Platform commission</th><td>{{.Commission}}</td></tr>
		<tr><th>Vendor net</th><td>{{.VendorNet}}</td></tr>
	</table>
	<p class="headline{{if .FullySettled}} settled{{end}}">{{.Headline}}</p>
	{{if .Cleared}}<p>Payment cleared on {{.ClearedAt.Format "2 Jan 2006"}}.</p>{{else if not .FullySettled}}<p>Payment pending.</p>{{end}}
</body>
</html>
`))

// RenderHTML renders the statement document.
func RenderHTML(s Statement) ([]byte, error) {
	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
