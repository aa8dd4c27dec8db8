package build

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const imageWrapperClass = "resp-image-wrapper"

// imagesTransform publishes local <img> sources, downscales them to MaxWidth
// when sharp is enabled, and wraps each one in a width-capped container.
func imagesTransform(opts ImageOptions, sharp bool, quality int, assets *assetPublisher) htmlTransform {
	return func(doc *docContext, root *html.Node) error {
		return walk(root, func(n *html.Node) error {
			if n.DataAtom != atom.Img {
				return nil
			}
			src, _ := getAttr(n, "src")
			path, ok := localFile(doc.srcDir, src)
			if !ok {
				return nil
			}

			original, err := assets.PublishFile(path)
			if err != nil {
				return err
			}
			display := original
			if sharp && isRasterImage(path) {
				resized, w, h, err := resizeToWidth(path, opts.MaxWidth, quality)
				if err != nil {
					doc.log.Warn().Err(err).Str("image", path).Msg("could not resize image, using original")
				} else {
					if resized != nil {
						if display, err = assets.Publish(resizedName(path, w), resized); err != nil {
							return err
						}
					}
					setAttr(n, "width", strconv.Itoa(w))
					setAttr(n, "height", strconv.Itoa(h))
				}
			}
			setAttr(n, "src", display)
			setAttr(n, "loading", "lazy")
			setAttr(n, "style", "max-width: 100%; height: auto;")

			style := fmt.Sprintf("position: relative; display: block; margin-left: auto; margin-right: auto; max-width: %dpx;", opts.MaxWidth)
			if opts.WrapperStyle != "" {
				style += " " + opts.WrapperStyle
			}
			target := n
			if opts.LinkImagesToOriginal && !insideLink(n) {
				link := element(atom.A, "class", "resp-image-link", "href", original, "target", "_blank", "rel", "noopener")
				wrap(n, link)
				target = link
			}
			wrap(target, element(atom.Span, "class", imageWrapperClass, "style", style))
			return nil
		})
	}
}

func insideLink(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.A {
			return true
		}
	}
	return false
}

func isRasterImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

func resizedName(path string, width int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%dw%s", strings.TrimSuffix(filepath.Base(path), ext), width, ext)
}

// resizeToWidth returns the encoded image scaled down to maxWidth and its
// final dimensions. data is nil when the image is already narrow enough.
func resizeToWidth(path string, maxWidth, quality int) (data []byte, w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return nil, b.Dx(), b.Dy(), nil
	}

	h = b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := encodeImage(&buf, dst, format, quality); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return buf.Bytes(), maxWidth, h, nil
}

func encodeImage(buf *bytes.Buffer, img image.Image, format string, quality int) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
	case "gif":
		return gif.Encode(buf, img, nil)
	default:
		return png.Encode(buf, img)
	}
}

// scaleToSquare fits img into a size x size transparent square, keeping its
// aspect ratio.
func scaleToSquare(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	w, h := size, size
	if b.Dx() > b.Dy() {
		h = b.Dy() * size / b.Dx()
	} else if b.Dy() > b.Dx() {
		w = b.Dx() * size / b.Dy()
	}
	x := (size - w) / 2
	y := (size - h) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), img, b, draw.Over, nil)
	return dst
}
