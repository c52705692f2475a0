package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const quotationHTMLTemplate = `<!doctype html>
<html lang="es">
<head>
  <meta charset="utf-8" />
  <title>Cotización</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 24px;
      width: 1200px;
      font-family: "Inter", "Helvetica Neue", Arial, sans-serif;
      color: #0f3b43;
      background: #ffffff;
    }
    .cabecera { text-align: center; margin-bottom: 24px; }
    .cabecera img { height: 64px; object-fit: contain; display: block; margin: 0 auto 12px; }
    .direccion { font-size: 13px; color: #000; font-weight: 500; margin-bottom: 8px; }
    .contacto { display: flex; align-items: center; justify-content: center; gap: 6px; }
    .contacto svg { width: 18px; height: 18px; display: block; flex-shrink: 0; }
    .telefonos { font-size: 13px; color: #000; font-weight: 500; }
    .titulo { font-size: 18px; font-weight: 700; color: #0f5560; margin: 0 0 8px; }
    .card { border-radius: 8px; border: 1px solid #e5e7eb; overflow: hidden; margin-bottom: 14px; }
    table { width: 100%; border-collapse: collapse; font-size: 12px; color: #0f3b43; }
    th, td { padding: 12px 10px; border-bottom: 1px solid #e6edf0; vertical-align: top; }
    thead th { background: #ffffff; font-weight: 700; text-align: left; color: #0f5560; }
    .qty { text-align: center; width: 80px; }
    .unit, .total { text-align: right; width: 140px; }
    .producto { font-weight: 600; color: #0f3b43; margin: 0 0 6px; }
    .producto-meta { font-size: 12px; color: #6b7880; margin: 0; }
    .flex { display: flex; gap: 16px; }
    .left { flex: 1 1 auto; }
    .right { width: 320px; }
    .resumen { border-radius: 8px; border: 1px solid #e5e7eb; padding: 16px; }
    .resumen-row { display: flex; justify-content: space-between; align-items: center; margin-bottom: 8px; font-size: 12px; }
    .resumen-row .grande { font-size: 18px; font-weight: 700; color: #0f5560; }
    .descuento { color: #d33c3c; }
    .abono { color: #137f46; font-weight: 700; }
    .saldo { color: #c84b00; font-weight: 700; }
    hr { border: none; border-top: 1px solid #e6edf0; margin: 8px 0; }
  </style>
</head>
<body>
  <div class="cabecera">
    {{if .LogoURL}}<img src="{{.LogoURL}}" alt="NEOLED" />{{end}}
    <p class="direccion">Av. Heroinas esq. Hamiraya #316</p>
    <div class="contacto">
      {{whatsappIcon}}
      <span class="telefonos">77918672 - 77950297</span>
    </div>
  </div>

  <h2 class="titulo">Productos Cotizados</h2>

  <div class="flex">
    <div class="left">
      <div class="card">
        <table>
          <thead>
            <tr>
              <th>Fecha</th>
              <th>Cliente</th>
              <th>Teléfono</th>
              <th>Dirección</th>
              <th>Tipo de Pago</th>
              <th>Vigencia</th>
            </tr>
          </thead>
          <tbody>
            <tr>
              <td>{{.Date}}</td>
              <td>{{.Customer.Name}}</td>
              <td>{{.Customer.Phone}}</td>
              <td>{{.Customer.Address}}</td>
              <td>{{paymentTermLabel .Customer.PaymentTerm}}</td>
              <td>{{.Customer.ValidityDays}} días</td>
            </tr>
          </tbody>
        </table>
      </div>

      <div class="card">
        <table>
          <thead>
            <tr>
              <th colspan="3">Descripción</th>
              <th class="qty">Cantidad</th>
              <th class="unit">Valor Unitario</th>
              <th class="total">Valor Total</th>
            </tr>
          </thead>
          <tbody>
            {{range .Items}}
            <tr>
              <td colspan="3">
                <p class="producto">{{.Name}}</p>
                {{with metaLine .}}<p class="producto-meta">{{.}}</p>{{end}}
              </td>
              <td class="qty">{{.Quantity}}</td>
              <td class="unit">{{money .UnitPrice}}</td>
              <td class="total">{{money (lineTotal .)}}</td>
            </tr>
            {{end}}
          </tbody>
        </table>
      </div>
    </div>

    <div class="right">
      <div class="resumen">
        <div class="titulo">Resumen de Pagos</div>
        <div class="resumen-row"><span>Subtotal:</span><span>{{money .Subtotal}}</span></div>
        {{if .ShowDiscount}}
        <div class="resumen-row"><span>Descuento Total:</span><span class="descuento">-{{money .DiscountTotal}}</span></div>
        {{end}}
        <hr>
        <div class="resumen-row"><span>Total:</span><span class="grande">{{money .FinalTotal}}</span></div>
        {{if .ShowBalance}}
        <div class="resumen-row"><span>Abono:</span><span class="abono">{{money .Advance}}</span></div>
        <div class="resumen-row"><span>Saldo:</span><span class="saldo">{{money .Balance}}</span></div>
        {{end}}
      </div>
    </div>
  </div>
</body>
</html>
`

const whatsappIconSVG = `<svg viewBox="0 0 24 24" fill="#25D366"><path d="M17.472 14.382c-.297-.149-1.758-.867-2.03-.967-.273-.099-.471-.148-.67.15-.197.297-.767.966-.94 1.164-.173.199-.347.223-.644.075-.297-.15-1.255-.463-2.39-1.475-.883-.788-1.48-1.761-1.653-2.059-.173-.297-.018-.458.13-.606.134-.133.298-.347.446-.52.149-.174.198-.298.298-.497.099-.198.05-.371-.025-.52-.075-.149-.669-1.612-.916-2.207-.242-.579-.487-.5-.669-.51-.173-.008-.371-.01-.57-.01-.198 0-.52.074-.792.372-.272.297-1.04 1.016-1.04 2.479 0 1.462 1.065 2.875 1.213 3.074.149.198 2.096 3.2 5.077 4.487.709.306 1.262.489 1.694.625.712.227 1.36.195 1.871.118.571-.085 1.758-.719 2.006-1.413.248-.694.248-1.289.173-1.413-.074-.124-.272-.198-.57-.347m-5.421 7.403h-.004a9.87 9.87 0 01-5.031-1.378l-.361-.214-3.741.982.998-3.648-.235-.374a9.86 9.86 0 01-1.51-5.26c.001-5.45 4.436-9.884 9.888-9.884 2.64 0 5.122 1.03 6.988 2.898a9.825 9.825 0 012.893 6.994c-.003 5.45-4.437 9.884-9.885 9.884m8.413-18.297A11.815 11.815 0 0012.05 0C5.495 0 .16 5.335.157 11.892c0 2.096.547 4.142 1.588 5.945L.057 24l6.305-1.654a11.882 11.882 0 005.683 1.448h.005c6.554 0 11.89-5.335 11.893-11.893 0-3.189-1.248-6.189-3.515-8.464"/></svg>`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"money":            formatMoney,
		"lineTotal":        lineTotal,
		"metaLine":         metaLine,
		"paymentTermLabel": PaymentTermLabel,
		"whatsappIcon":     func() template.HTML { return template.HTML(whatsappIconSVG) },
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("quotation").Funcs(funcs).Parse(quotationHTMLTemplate)),
	}
}

// templateData extends RenderInput with the policy-derived summary rows.
type templateData struct {
	RenderInput
	ShowDiscount bool
	ShowBalance  bool
	Advance      float64
	Balance      float64
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	if strings.TrimSpace(input.Customer.Name) == "" {
		return "", ErrMissingCustomerName
	}
	if strings.TrimSpace(input.Customer.Phone) == "" {
		return "", ErrMissingCustomerPhone
	}

	data := templateData{
		RenderInput:  input,
		ShowDiscount: normalizeAmount(input.DiscountTotal) > 0,
	}
	data.ShowBalance, data.Advance, data.Balance = advanceBalance(input.Policy, input.Customer.PaymentTerm, input.FinalTotal)

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// advanceBalance resolves the Abono/Saldo rows. Under the default policy
// contra-entrega suppresses both rows; under always-unpaid the rows are
// rendered with a zero advance for every term.
func advanceBalance(policy BalancePolicy, term PaymentTerm, total float64) (show bool, advance, balance float64) {
	if policy == BalanceAlwaysUnpaid {
		return true, 0, total
	}
	switch term {
	case PaymentFullAdvance:
		return true, total, 0
	case PaymentHalfAdvance:
		return true, total / 2, total / 2
	case PaymentCashOnDelivery:
		return false, 0, total
	default:
		return true, 0, total
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("Bs %.2f", normalizeAmount(v))
}

func lineTotal(item LineItemView) float64 {
	return item.UnitPrice * float64(item.Quantity)
}

// PaymentTermLabel maps a payment term to its customer-facing label.
func PaymentTermLabel(term PaymentTerm) string {
	switch term {
	case PaymentCashOnDelivery:
		return "Contra Entrega"
	case PaymentFullAdvance:
		return "Pago por Adelantado"
	case PaymentHalfAdvance:
		return "Mitad de Adelanto"
	default:
		return ""
	}
}

// metaLine joins the optional item attributes. A segment is dropped when
// empty after trimming or when it is the literal string "null", which
// upstream data has been known to carry.
func metaLine(item LineItemView) string {
	segments := make([]string, 0, 4)
	for _, value := range []string{item.Color, item.Category, item.Type} {
		if segment, ok := cleanSegment(value); ok {
			segments = append(segments, segment)
		}
	}
	if item.Stock != nil {
		segments = append(segments, fmt.Sprintf("Stock: %d", *item.Stock))
	}
	return strings.Join(segments, " - ")
}

func cleanSegment(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return "", false
	}
	return trimmed, true
}
