package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"comanda/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateRelatorioTurnoPDF renders the shift-close report on A4 and writes it
// to storagePath/turno_<id>.pdf. Returns the path of the generated file.
func GenerateRelatorioTurnoPDF(rel *dto.RelatorioTurnoResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("turno_%s.pdf", rel.Turno.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	titulo := "Comanda"
	if rel.Empresa != nil && rel.Empresa.Nome != "" {
		titulo = rel.Empresa.Nome
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, tr(titulo), "", 1, "C", false, 0, "")
	if rel.Empresa != nil && rel.Empresa.CNPJ != nil {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, "CNPJ "+*rel.Empresa.CNPJ, "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, tr("Fechamento de caixa"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Shift ────────────────────────────────────────────────────────────────
	t := rel.Turno
	linha := func(label, valor string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW*0.6, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 6, tr(valor), "", 1, "R", false, 0, "")
	}
	linha("Aberto em", t.AbertoEm)
	if t.FechadoEm != nil {
		linha("Fechado em", *t.FechadoEm)
	}
	linha("Valor de abertura", moeda(t.ValorAbertura))
	linha("Entradas", moeda(t.TotalEntradas))
	linha("Saídas", moeda(t.TotalSaidas))
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW*0.6, 6, "Saldo esperado", "T", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 6, moeda(t.SaldoEsperado), "T", 1, "R", false, 0, "")
	if t.ValorFechamento != nil {
		linha("Valor contado", moeda(*t.ValorFechamento))
	}
	if t.Diferenca != nil {
		linha("Diferença", moeda(*t.Diferenca))
	}
	pdf.Ln(4)

	// ── Payment methods ──────────────────────────────────────────────────────
	secao(pdf, tr, contentW, "Entradas por forma de pagamento")
	for _, forma := range []string{"dinheiro", "debito", "credito", "pix"} {
		if v, ok := t.PorFormaPagamento[forma]; ok {
			linha(forma, moeda(v))
		}
	}
	pdf.Ln(4)

	// ── Orders ───────────────────────────────────────────────────────────────
	secao(pdf, tr, contentW, "Comandas")
	linha("Fechadas", fmt.Sprintf("%d", rel.ComandasFechadas))
	linha("Canceladas", fmt.Sprintf("%d", rel.ComandasCanceladas))
	pdf.Ln(4)

	if len(rel.MaisVendidos) > 0 {
		secao(pdf, tr, contentW, "Mais vendidos")
		col1, col2, col3 := contentW*0.6, contentW*0.15, contentW*0.25
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(col1, 6, "Produto", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "Qtd", "B", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "Valor", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, pv := range rel.MaisVendidos {
			pdf.CellFormat(col1, 5, tr(pv.Nome), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, fmt.Sprintf("%d", pv.Quantidade), "", 0, "C", false, 0, "")
			pdf.CellFormat(col3, 5, moeda(pv.Valor), "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(t.Movimentos) > 0 {
		secao(pdf, tr, contentW, "Movimentos")
		pdf.SetFont("Helvetica", "", 8)
		for _, m := range t.Movimentos {
			valor := moeda(m.Valor)
			if m.Tipo == "saida" {
				valor = "-" + valor
			}
			pdf.CellFormat(contentW*0.25, 5, m.CreatedAt, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.45, 5, tr(m.Descricao), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.1, 5, m.FormaPagamento, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.2, 5, valor, "", 1, "R", false, 0, "")
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("Gerado em "+rel.GeradoEm), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func secao(pdf *fpdf.Fpdf, tr func(string) string, w float64, titulo string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(w, 7, tr(titulo), "B", 1, "L", false, 0, "")
}

func moeda(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(2)
}
