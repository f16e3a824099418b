package catalog

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// DecodeImage validates an image payload and reads its dimensions.
// SVG payloads are accepted by sniffing for the root element.
func DecodeImage(data []byte, format ImageFormat) (*Image, error) {
	if len(data) == 0 {
		return nil, NewFetchError(EmptyResponse, "image payload is empty", nil)
	}

	if format == FormatSVG {
		head := data
		if len(head) > 512 {
			head = head[:512]
		}
		if !bytes.Contains(head, []byte("<svg")) {
			return nil, NewFetchError(ImageDecodeFailure, "payload is not an SVG document", nil)
		}
		return &Image{Data: data, Format: "svg"}, nil
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, NewFetchError(ImageDecodeFailure, "", err)
	}

	return &Image{
		Data:   data,
		Format: name,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
