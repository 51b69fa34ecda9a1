package coursework

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
)

const (
	MaxUploadSize = 10 << 20

	profileImageSize = 512
	pdfMIME          = "application/pdf"
)

// Upload is a file travelling with a form to the remote API.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

func readUpload(fh *multipart.FileHeader, field string) ([]byte, error) {
	if fh.Size > MaxUploadSize {
		return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: "file is too large (max 10MB)"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading upload")
	}
	if len(data) > MaxUploadSize {
		return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: "file is too large (max 10MB)"})
	}
	return data, nil
}

// ReadPDF loads an assignment document, rejecting anything that is not a PDF.
func ReadPDF(fh *multipart.FileHeader) (*Upload, error) {
	const field = "assignmentPdf"
	data, err := readUpload(fh, field)
	if err != nil {
		return nil, err
	}
	if !mimetype.Detect(data).Is(pdfMIME) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: "must be a PDF file"})
	}
	return &Upload{Field: field, Filename: fh.Filename, ContentType: pdfMIME, Data: data}, nil
}

// ReadProfileImage loads a profile picture and re-encodes it as a JPEG fitting 512x512.
func ReadProfileImage(fh *multipart.FileHeader) (*Upload, error) {
	const field = "profileImage"
	data, err := readUpload(fh, field)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: "must be a JPEG, PNG, GIF, BMP or TIFF image"})
	}
	img = imaging.Fit(img, profileImageSize, profileImageSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encoding profile image")
	}
	return &Upload{
		Field:       field,
		Filename:    uuid.New().String() + ".jpg",
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}
