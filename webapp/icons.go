package webapp

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// IconsURL is where main serves the generated icon directory
const IconsURL = "/icons"

// Icon sizes of the web manifest
const (
	DefaultIconSize = 192
	LargeIconSize   = 512
)

var placeholderColor = color.NRGBA{R: 0x30, G: 0x6c, B: 0xa8, A: 0xff}

// GenerateIcons resizes the logo at src into the manifest icons in dir.
// A plain placeholder is drawn when src does not exist.
func GenerateIcons(src, dir string) (app.Icon, error) {
	logo, err := loadLogo(src)
	if err != nil {
		return app.Icon{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return app.Icon{}, fmt.Errorf("creating icon directory: %w", err)
	}

	icon := app.Icon{}
	for _, size := range []int{DefaultIconSize, LargeIconSize} {
		name := iconName(size)
		resized := imaging.Fill(logo, size, size, imaging.Center, imaging.Lanczos)
		if err := imaging.Save(resized, filepath.Join(dir, name)); err != nil {
			return app.Icon{}, fmt.Errorf("saving icon %s: %w", name, err)
		}
		Logger.Debug("Generated icon", "size", size, "dir", dir)
		if size == DefaultIconSize {
			icon.Default = IconsURL + "/" + name
		} else {
			icon.Large = IconsURL + "/" + name
		}
	}
	return icon, nil
}

func iconName(size int) string {
	return fmt.Sprintf("icon-%d.png", size)
}

func loadLogo(src string) (image.Image, error) {
	if src != "" {
		logo, err := imaging.Open(src)
		if err == nil {
			return logo, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening logo %s: %w", src, err)
		}
		Logger.Info("No logo found, drawing placeholder icons", "path", src)
	}
	return placeholderLogo(), nil
}

// placeholderLogo is a filled square with a lighter inset
func placeholderLogo() image.Image {
	base := imaging.New(LargeIconSize, LargeIconSize, placeholderColor)
	inset := imaging.New(LargeIconSize/2, LargeIconSize/2, color.NRGBA{R: 0xf5, G: 0xf7, B: 0xfa, A: 0xff})
	return imaging.Paste(base, inset, image.Pt(LargeIconSize/4, LargeIconSize/4))
}
