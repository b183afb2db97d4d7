package services

import (
	"fmt"
	"io"
	"strings"

	"airbnb-insights/models"

	"github.com/mattn/go-runewidth"
)

const reportWidth = 72

var cityDisplayNames = map[string]string{
	"Amsterdam": "Ámsterdam",
	"Milan":     "Milán",
}

// PrintInsightReport formats the insight report and ROI estimates to w
func PrintInsightReport(w io.Writer, report *models.InsightReport, rois []models.CityROI) {
	border := strings.Repeat("═", reportWidth)
	thin := strings.Repeat("─", reportWidth)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("EUROPEAN SHORT-TERM RENTAL INSIGHTS", reportWidth))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n OVERVIEW\n%s\n", thin)
	fmt.Fprintf(w, "  Total Listings          : %d\n", report.TotalListings)
	fmt.Fprintf(w, "  Average Price/Night     : %s\n", money(report.AveragePrice))
	fmt.Fprintf(w, "  Average Price/Guest     : %s\n", money(report.AveragePricePerHead))
	fmt.Fprintf(w, "  Average Rating          : %s\n", number(report.AverageRating))
	fmt.Fprintf(w, "  Superhosts              : %s\n", percent(report.SuperhostPct))

	if len(report.Cities) > 0 {
		fmt.Fprintf(w, "\n LISTINGS PER CITY\n%s\n", thin)
		fmt.Fprintf(w, "  %s %7s %7s %10s %7s %7s\n",
			pad("City", 14), "Count", "Share", "Price", "Rating", "Index")
		for _, c := range report.Cities {
			fmt.Fprintf(w, "  %s %7d %6.1f%% %10s %7s %7.1f\n",
				pad(displayCity(c.City), 14), c.Listings, c.Share*100,
				money(c.AveragePrice), number(c.AverageRating), c.Competitiveness.Index)
		}

		for _, c := range report.Cities {
			if len(c.TopBarrios) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n TOP NEIGHBOURHOODS · %s\n%s\n", strings.ToUpper(displayCity(c.City)), thin)
			top := c.TopBarrios[0].Count
			for _, b := range c.TopBarrios {
				fmt.Fprintf(w, "  %s %5d  %s\n", pad(b.Label, 30), b.Count, bar(b.Count, top, 30))
			}
		}
	}

	if len(rois) > 0 {
		fmt.Fprintf(w, "\n ESTIMATED YEARLY RETURN PER LISTING\n%s\n", thin)
		fmt.Fprintf(w, "  %s %8s %6s %11s %11s %11s %8s\n",
			pad("City", 14), "Price", "Occ.", "Net Rev.", "Invest.", "Profit", "ROI")
		for _, r := range rois {
			fmt.Fprintf(w, "  %s %8s %5s%% %11s %11s %11s %7s%%\n",
				pad(displayCity(r.City), 14),
				r.AveragePrice.StringFixed(2), r.OccupancyPct.StringFixed(0),
				r.NetRevenue.StringFixed(0), r.InitialInvestment.StringFixed(0),
				r.NetProfit.StringFixed(0), r.ROI.StringFixed(1))
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

func displayCity(city string) string {
	if name, ok := cityDisplayNames[city]; ok {
		return name
	}
	return city
}

func money(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("€%.2f", *v)
}

func number(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func bar(count, top, width int) string {
	if top <= 0 {
		return ""
	}
	n := count * width / top
	if n == 0 && count > 0 {
		n = 1
	}
	return strings.Repeat("▓", n)
}

// pad truncates or right-pads s to exactly width terminal cells
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

func center(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	left := (width - sw) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-sw-left)
}
