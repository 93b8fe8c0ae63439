package app

import (
	"fmt"
	"image"
	"log/slog"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/air_monitor/internal/telemetry"
)

const (
	panelWidth  = 128
	panelHeight = 64
	lineHeight  = 13 // Face7x13: ascent 11 + descent 2
	panelLines  = panelHeight / lineHeight
)

// Face7x13 only has glyphs for printable ASCII.
var panelASCII = strings.NewReplacer("°", "", "µ", "u", "³", "3", "²", "2")

// Panel shows the station status on an SSD1306 OLED.
type Panel struct {
	dev  *ssd1306.Dev
	last string
	log  *slog.Logger
}

// OpenPanel initializes the display on bus at its default address.
func OpenPanel(bus i2c.Bus, logger *slog.Logger) (*Panel, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, err
	}
	p := &Panel{dev: dev, log: logger.With("component", "display")}
	p.log.Info("display initialized", "device", dev.String())
	return p, nil
}

// Show draws a status text, one line per row. Lines past the fourth are
// dropped.
func (p *Panel) Show(text string) {
	p.draw(layoutText(text))
}

// ShowCurrent draws the latest values in the compact four-row layout.
func (p *Panel) ShowCurrent(c telemetry.Current) {
	p.draw(currentLines(c))
}

func (p *Panel) draw(lines []string) {
	key := strings.Join(lines, "\n")
	if key == p.last {
		return
	}
	if err := p.dev.Draw(p.dev.Bounds(), renderLines(lines), image.Point{}); err != nil {
		p.log.Warn("display update error", "error", err)
		return
	}
	p.last = key
}

// Halt blanks the display.
func (p *Panel) Halt() {
	if err := p.dev.Halt(); err != nil {
		p.log.Warn("display halt error", "error", err)
	}
}

// layoutText splits text into at most panelLines printable ASCII lines.
func layoutText(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > panelLines {
		lines = lines[:panelLines]
	}
	for i, line := range lines {
		lines[i] = toPanelASCII(line)
	}
	return lines
}

func toPanelASCII(s string) string {
	s = panelASCII.Replace(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7E {
			return '?'
		}
		return r
	}, s)
}

// currentLines fits the readings into four 18-column rows.
func currentLines(c telemetry.Current) []string {
	return []string{
		fmt.Sprintf("T %.1fC RH %.1f%%", c.Temperature, c.Humidity),
		fmt.Sprintf("PM2.5 %.1f ug/m3", c.PM25),
		fmt.Sprintf("PM10  %.1f ug/m3", c.PM10),
		fmt.Sprintf("VOC %.0f NOx %.0f", c.VOC, c.NOx),
	}
}

func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, panelWidth, panelHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	for i, line := range lines {
		if i >= panelLines {
			break
		}
		drawer.Dot = fixed.P(0, (i+1)*lineHeight)
		drawer.DrawString(line)
	}
	return img
}
