package render

import (
	"strings"
	"testing"
)

func baseInput() RenderInput {
	return RenderInput{
		Customer: CustomerView{
			Name:         "Maria Fernandez",
			Phone:        "77912345",
			Address:      "Av. America 123",
			PaymentTerm:  PaymentCashOnDelivery,
			ValidityDays: 15,
		},
		Items: []LineItemView{
			{Name: "Foco LED 9W", Quantity: 3, UnitPrice: 10.00},
			{Name: "Cinta LED 5m", Quantity: 1, UnitPrice: 25.00},
		},
		Subtotal:   55.00,
		FinalTotal: 55.00,
		Date:       "30/08/2026",
		Policy:     BalanceByPaymentTerm,
	}
}

func renderOrFail(t *testing.T, input RenderInput) string {
	t.Helper()
	html, err := NewRenderer().RenderHTML(input)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return html
}

func TestFormatMoneyIdempotent(t *testing.T) {
	if formatMoney(55) != formatMoney(55) {
		t.Fatalf("formatting is not stable")
	}
	if got := formatMoney(55); got != "Bs 55.00" {
		t.Fatalf("expected Bs 55.00, got %q", got)
	}
	if got := formatMoney(0.004); got != "Bs 0.00" {
		t.Fatalf("expected near-zero to format as Bs 0.00, got %q", got)
	}
	if got := formatMoney(-0.0049); got != "Bs 0.00" {
		t.Fatalf("expected negative near-zero to normalize, got %q", got)
	}
}

func TestEscapingOfReservedCharacters(t *testing.T) {
	input := baseInput()
	input.Customer.Name = `Tienda <"Luz & Color">`
	input.Items[0].Name = "Foco 'A' <script>"

	html := renderOrFail(t, input)
	for _, raw := range []string{`<"Luz`, "<script>"} {
		if strings.Contains(html, raw) {
			t.Fatalf("raw reserved characters leaked into output: %q", raw)
		}
	}
	if !strings.Contains(html, "Luz &amp; Color") {
		t.Fatalf("expected escaped ampersand in output")
	}
}

func TestLineTotals(t *testing.T) {
	html := renderOrFail(t, baseInput())
	if !strings.Contains(html, "Bs 30.00") {
		t.Fatalf("expected line total 3 x 10.00 = Bs 30.00")
	}
	if !strings.Contains(html, "Bs 25.00") {
		t.Fatalf("expected line total 1 x 25.00 = Bs 25.00")
	}
}

func TestDiscountRowSuppressedAtZero(t *testing.T) {
	html := renderOrFail(t, baseInput())
	if strings.Contains(html, "Descuento Total") {
		t.Fatalf("discount row must be absent when discount is zero")
	}
}

func TestDiscountRowShownWhenPositive(t *testing.T) {
	input := baseInput()
	input.DiscountTotal = 5
	input.FinalTotal = 50

	html := renderOrFail(t, input)
	if !strings.Contains(html, "Descuento Total") {
		t.Fatalf("expected discount row for positive discount")
	}
	if !strings.Contains(html, "-Bs 5.00") {
		t.Fatalf("expected discount rendered as -Bs 5.00")
	}
}

// A 0.003 discount normalizes to zero before the comparison, so the row
// must be absent rather than rendered as "-Bs 0.00".
func TestNearZeroDiscountRowAbsent(t *testing.T) {
	input := baseInput()
	input.DiscountTotal = 0.003

	html := renderOrFail(t, input)
	if strings.Contains(html, "Descuento Total") {
		t.Fatalf("near-zero discount must not render a discount row")
	}
}

func TestAdvanceBalanceByPaymentTerm(t *testing.T) {
	cases := []struct {
		term    PaymentTerm
		show    bool
		advance float64
		balance float64
	}{
		{PaymentFullAdvance, true, 100, 0},
		{PaymentHalfAdvance, true, 50, 50},
		{PaymentCashOnDelivery, false, 0, 100},
	}
	for _, tc := range cases {
		show, advance, balance := advanceBalance(BalanceByPaymentTerm, tc.term, 100)
		if show != tc.show || advance != tc.advance || balance != tc.balance {
			t.Fatalf("term %s: got show=%v advance=%v balance=%v", tc.term, show, advance, balance)
		}
	}
}

func TestAdvanceBalanceAlwaysUnpaid(t *testing.T) {
	for _, term := range []PaymentTerm{PaymentFullAdvance, PaymentHalfAdvance, PaymentCashOnDelivery} {
		show, advance, balance := advanceBalance(BalanceAlwaysUnpaid, term, 80)
		if !show || advance != 0 || balance != 80 {
			t.Fatalf("term %s: got show=%v advance=%v balance=%v", term, show, advance, balance)
		}
	}
}

// Two items (3 x 10.00, 1 x 25.00), no discount, contra-entrega: subtotal
// and total render at 55.00, the discount row is absent and the
// Abono/Saldo rows are suppressed under the default policy.
func TestCashOnDeliveryDocument(t *testing.T) {
	html := renderOrFail(t, baseInput())

	if !strings.Contains(html, "Bs 55.00") {
		t.Fatalf("expected total Bs 55.00")
	}
	if !strings.Contains(html, "Contra Entrega") {
		t.Fatalf("expected payment term label")
	}
	if strings.Contains(html, "Abono") || strings.Contains(html, "Saldo") {
		t.Fatalf("expected Abono/Saldo rows suppressed for contra-entrega")
	}
}

func TestMetaLineFiltersSentinels(t *testing.T) {
	item := LineItemView{Name: "Panel", Color: "null", Category: "", Type: "Standard"}
	if got := metaLine(item); got != "Standard" {
		t.Fatalf("expected only Standard, got %q", got)
	}

	stock := 12
	item = LineItemView{Name: "Panel", Color: " Calido ", Type: "NULL", Stock: &stock}
	if got := metaLine(item); got != "Calido - Stock: 12" {
		t.Fatalf("expected trimmed color and stock segment, got %q", got)
	}
}

func TestPaymentTermLabels(t *testing.T) {
	if PaymentTermLabel(PaymentFullAdvance) != "Pago por Adelantado" {
		t.Fatalf("wrong label for pago-adelantado")
	}
	if PaymentTermLabel("") != "" {
		t.Fatalf("empty term must map to empty label")
	}
	if PaymentTermLabel("otro") != "" {
		t.Fatalf("unknown term must map to empty label")
	}
}

func TestValidationRejectsMissingCustomer(t *testing.T) {
	input := baseInput()
	input.Customer.Name = "  "
	if _, err := NewRenderer().RenderHTML(input); err != ErrMissingCustomerName {
		t.Fatalf("expected ErrMissingCustomerName, got %v", err)
	}

	input = baseInput()
	input.Customer.Phone = ""
	if _, err := NewRenderer().RenderHTML(input); err != ErrMissingCustomerPhone {
		t.Fatalf("expected ErrMissingCustomerPhone, got %v", err)
	}
}

func TestCheckTotals(t *testing.T) {
	input := baseInput()
	if err := CheckTotals(input); err != nil {
		t.Fatalf("expected consistent totals, got %v", err)
	}

	input.FinalTotal = 60
	if err := CheckTotals(input); err == nil {
		t.Fatalf("expected total mismatch to be reported")
	}
}
