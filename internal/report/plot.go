package report

import (
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"mibel-dam/internal/clearing"
)

// WritePriceChart renders the 24-hour PT-vs-ES price comparison as a
// grouped bar chart. Failed hours are drawn as empty slots; the session
// CSV carries their status.
func WritePriceChart(path string, day *clearing.DayResult) error {
	ptVals := make(plotter.Values, len(day.Hours))
	esVals := make(plotter.Values, len(day.Hours))
	labels := make([]string, len(day.Hours))
	for h, o := range day.Hours {
		labels[h] = strconv.Itoa(h)
		if !o.OK() {
			continue
		}
		ptVals[h] = o.Result.PricePT
		esVals[h] = o.Result.PriceES
	}

	p := plot.New()
	p.Title.Text = "Day-Ahead Market Prices: PT vs ES"
	p.Y.Label.Text = "EUR/MWh"
	p.X.Label.Text = "Hour"

	width := vg.Points(8)

	ptBars, err := plotter.NewBarChart(ptVals, width)
	if err != nil {
		return err
	}
	ptBars.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	ptBars.LineStyle.Width = 0
	ptBars.Offset = -width / 2

	esBars, err := plotter.NewBarChart(esVals, width)
	if err != nil {
		return err
	}
	esBars.Color = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	esBars.LineStyle.Width = 0
	esBars.Offset = width / 2

	p.Add(ptBars, esBars)
	p.Legend.Add("PT", ptBars)
	p.Legend.Add("ES", esBars)
	p.Legend.Top = true
	p.NominalX(labels...)

	return p.Save(12*vg.Inch, 5*vg.Inch, path)
}
