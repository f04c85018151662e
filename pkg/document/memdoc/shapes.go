package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type shapeOps struct{ w *Workbook }

func (o shapeOps) InsertImage(ctx context.Context, sheet, anchor, name string, payload []byte) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if len(payload) == 0 {
		return "", document.Rejectf("image payload is empty")
	}
	if len(payload) > maxImagePayload {
		return "", document.Rejectf("image payload of %d bytes exceeds the %d byte ceiling",
			len(payload), maxImagePayload)
	}
	return o.insert(sheet, anchor, name, "Picture", &Shape{
		Type:         "image",
		PayloadBytes: len(payload),
	})
}

func (o shapeOps) InsertShape(ctx context.Context, sheet, anchor, name, shapeType, fillColor string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	return o.insert(sheet, anchor, name, "Shape", &Shape{
		Type:      shapeType,
		FillColor: fillColor,
	})
}

func (o shapeOps) InsertTextBox(ctx context.Context, sheet, anchor, name, text string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	return o.insert(sheet, anchor, name, "TextBox", &Shape{
		Type: "text_box",
		Text: text,
	})
}

// insert finishes an insertion under the held lock. The prefix seeds
// auto-naming per shape flavor.
func (o shapeOps) insert(sheet, anchor, name, prefix string, sh *Shape) (string, error) {
	if _, err := o.w.mutableSheet(sheet, allowObjects); err != nil {
		return "", err
	}
	if _, err := document.ParseRange(anchor); err != nil {
		return "", document.Rejectf("invalid anchor %q: %v", anchor, err)
	}
	picked, err := o.w.pickName(name, prefix)
	if err != nil {
		return "", err
	}
	sh.Name = picked
	sh.Sheet = sheet
	sh.Anchor = anchor
	o.w.st.Shapes = append(o.w.st.Shapes, sh)
	return picked, nil
}

func (o shapeOps) Move(ctx context.Context, name string, left, top float64) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.shape(name)
	if err != nil {
		return err
	}
	sh.Left, sh.Top = left, top
	return nil
}

func (o shapeOps) Resize(ctx context.Context, name string, width, height float64) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.shape(name)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return document.Rejectf("shape dimensions must be positive")
	}
	sh.Width, sh.Height = width, height
	return nil
}

func (o shapeOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, sh := range o.w.st.Shapes {
		if sh.Name == name {
			o.w.st.Shapes = append(o.w.st.Shapes[:i], o.w.st.Shapes[i+1:]...)
			return nil
		}
	}
	return document.Rejectf("no shape named %q", name)
}

func (o shapeOps) shape(name string) (*Shape, error) {
	for _, sh := range o.w.st.Shapes {
		if sh.Name == name {
			return sh, nil
		}
	}
	return nil, document.Rejectf("no shape named %q", name)
}
