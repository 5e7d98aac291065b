package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/keapril/webinventory/internal/imaging"
	"github.com/keapril/webinventory/internal/model"
)

// StoreImage normalises a photo and returns the reference to save on the
// item: an uploaded object URL, or an inline data URL when no uploader is
// configured.
func (c *Controller) StoreImage(ctx context.Context, sku string, r io.Reader) (string, error) {
	img, err := imaging.Process(r)
	if err != nil {
		return "", err
	}
	if c.uploader == nil {
		return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
	}
	ref, err := c.uploader.Upload(ctx, sku, img.Data)
	if err != nil {
		return "", fmt.Errorf("uploading image for %s: %w", sku, err)
	}
	return ref, nil
}

// AttachImage replaces the photo of an existing item.
func (c *Controller) AttachImage(ctx context.Context, sku string, r io.Reader) (model.CatalogItem, error) {
	item, ok := c.Item(sku)
	if !ok {
		return model.CatalogItem{}, fmt.Errorf("attaching image to %s: %w", sku, ErrUnknownSKU)
	}
	ref, err := c.StoreImage(ctx, sku, r)
	if err != nil {
		slog.Warn("failed to store image", "sku", sku, "error", err)
		return model.CatalogItem{}, err
	}
	item.ImageReference = ref

	if err := c.write(ctx, item, c.entry(model.ActionModified, item, item.Stock, "更新圖片")); err != nil {
		return model.CatalogItem{}, err
	}
	slog.Info("item image updated", "sku", sku)

	c.Load(ctx)
	return item, nil
}
