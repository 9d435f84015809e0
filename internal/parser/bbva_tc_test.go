package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmtz-dev/bancos-reader/internal/extractor"
	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

func cardDoc(pageTexts ...string) *extractor.Document {
	pages := make([]extractor.Page, len(pageTexts))
	for i, text := range pageTexts {
		pages[i] = extractor.NewPage(i+1, nil, text)
	}
	return extractor.NewDocument("BBVA TC 0110.pdf", pages...)
}

func TestBBVACardParserParse(t *testing.T) {
	p := &BBVACardParser{Account: "0110", Currency: "MXN"}

	t.Run("line without RFC", func(t *testing.T) {
		movements, err := p.Parse(cardDoc("01/08/25 02/08/25 PAGO TDC ****0110 $ -12,432.34"))
		require.NoError(t, err)
		require.Len(t, movements, 1)

		m := movements[0]
		assert.Equal(t, "2025-08-01", m.OperationDate)
		assert.Equal(t, "2025-08-02", m.SettlementDate)
		assert.Equal(t, "PAGO TDC", m.Description)
		assert.Equal(t, "REF:****0110", m.Detail)
		assert.Equal(t, "0110", m.Account)
		assert.Equal(t, "MXN", m.Currency)
		assert.Equal(t, 1, m.Page)
	})

	t.Run("line with RFC", func(t *testing.T) {
		movements, err := p.Parse(cardDoc("08/01/25 09/01/25 OXXO GAS AME 1404027R0 ******7111 $ 399.00"))
		require.NoError(t, err)
		require.Len(t, movements, 1)

		m := movements[0]
		assert.Equal(t, "2025-01-08", m.OperationDate)
		assert.Equal(t, "2025-01-09", m.SettlementDate)
		// The RFC matcher runs first, so the tax-ID tokens never leak
		// into the description.
		assert.Equal(t, "OXXO GAS", m.Description)
		assert.Equal(t, "RFC:AME 1404027R0 REF:******7111", m.Detail)
	})

	t.Run("negative amount is a credit, positive a charge", func(t *testing.T) {
		movements, err := p.Parse(cardDoc(
			"01/08/25 02/08/25 PAGO TDC ****0110 $ -12,432.34\n" +
				"03/08/25 04/08/25 RESTAURANTE ****0110 $ 850.00"))
		require.NoError(t, err)
		require.Len(t, movements, 2)

		payment, purchase := movements[0], movements[1]
		require.NotNil(t, payment.Credit)
		assert.InDelta(t, 12432.34, *payment.Credit, 1e-9)
		assert.Nil(t, payment.Charge)

		require.NotNil(t, purchase.Charge)
		assert.InDelta(t, 850.00, *purchase.Charge, 1e-9)
		assert.Nil(t, purchase.Credit)
	})

	t.Run("stop marker ends the whole document", func(t *testing.T) {
		movements, err := p.Parse(cardDoc(
			"01/08/25 02/08/25 PAGO TDC ****0110 $ -100.00\n"+
				"TABLA / GRAFICO DE ESTADO DE CUENTA\n"+
				"03/08/25 04/08/25 RESTAURANTE ****0110 $ 850.00",
			"05/08/25 06/08/25 SUPERMERCADO ****0110 $ 300.00"))
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, "PAGO TDC", movements[0].Description)
	})

	t.Run("boilerplate and header lines are skipped", func(t *testing.T) {
		movements, err := p.Parse(cardDoc(
			"ESTADO DE CUENTA AL 31 DE AGOSTO\n" +
				"PAGINA 1 DE 10\n" +
				"FECHA DE AUTORIZACION FECHA DE APLICACION DESCRIPCION\n" +
				"IMPORTE DE CARGOS\n" +
				"Estimado tarjetahabiente, le informamos que su tasa cambio\n" +
				"01/08/25 02/08/25 FARMACIA ****0110 $ 120.50"))
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, "FARMACIA", movements[0].Description)
	})

	t.Run("prose lines are ignored without error", func(t *testing.T) {
		movements, err := p.Parse(cardDoc("Su pago minimo vence el 20 de agosto."))
		require.NoError(t, err)
		assert.Empty(t, movements)
	})

	t.Run("account falls back to the file stem", func(t *testing.T) {
		bare := &BBVACardParser{}
		doc := extractor.NewDocument("BBVA TC agosto.pdf",
			extractor.NewPage(1, nil, "01/08/25 02/08/25 FARMACIA ****0110 $ 120.50"))

		movements, err := bare.Parse(doc)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, "BBVA TC agosto", movements[0].Account)
		assert.Equal(t, "MXN", movements[0].Currency)
	})

	t.Run("movements sorted by settlement date with unparseable last", func(t *testing.T) {
		movements, err := p.Parse(cardDoc(
			"10/08/25 31/02/25 CARGO RARO ****0110 $ 10.00\n" +
				"10/08/25 15/08/25 SEGUNDO ****0110 $ 20.00\n" +
				"01/08/25 02/08/25 PRIMERO ****0110 $ 30.00"))
		require.NoError(t, err)
		require.Len(t, movements, 3)

		assert.Equal(t, "PRIMERO", movements[0].Description)
		assert.Equal(t, "SEGUNDO", movements[1].Description)
		// Feb 31 never parses, so the entry keeps its raw date and sinks
		// to the end.
		assert.Equal(t, "CARGO RARO", movements[2].Description)
		assert.Equal(t, "31/02/25", movements[2].SettlementDate)
	})
}

func TestSortMovementsIdempotent(t *testing.T) {
	mk := func(settle string, page int) models.Movement {
		return models.Movement{SettlementDate: settle, Page: page}
	}
	movements := []models.Movement{
		mk("2025-08-15", 2),
		mk("garbage", 1),
		mk("2025-08-02", 3),
		mk("2025-08-02", 1),
	}

	sortMovements(movements)
	once := make([]models.Movement, len(movements))
	copy(once, movements)
	sortMovements(movements)

	assert.Equal(t, once, movements)
	assert.Equal(t, "2025-08-02", movements[0].SettlementDate)
	assert.Equal(t, 1, movements[0].Page)
	assert.Equal(t, 3, movements[1].Page)
	assert.Equal(t, "2025-08-15", movements[2].SettlementDate)
	assert.Equal(t, "garbage", movements[3].SettlementDate)
}

func TestIsCardTableHeader(t *testing.T) {
	tests := []struct {
		line     string
		expected bool
	}{
		{"FECHA DE AUTORIZACION FECHA DE APLICACION DESCRIPCION", true},
		{"IMPORTE DE CARGOS", true},
		{"IMPORTE DE ABONOS", true},
		{"FECHA DE CORTE", false},
		{"01/08/25 02/08/25 FARMACIA ****0110 $ 120.50", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isCardTableHeader(tt.line), tt.line)
	}
}
