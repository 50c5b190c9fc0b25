// Menu handler: file dialogs, edit actions and keyboard shortcuts
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"github.com/sirupsen/logrus"

	"cv-image-editor/internal/core"
	"cv-image-editor/internal/io"
)

// EditActions are the history operations reachable from the menu and shortcuts.
type EditActions struct {
	Commit     func()
	Undo       func()
	Redo       func()
	Reset      func()
	ToggleCrop func()
}

// MenuHandler handles menu actions
type MenuHandler struct {
	window fyne.Window
	editor *core.Editor
	loader *io.ImageLoader
	logger logrus.FieldLogger

	actions       EditActions
	onImageLoaded func(string)
	onImageSaved  func(string)
	onError       func(string, error)
}

func NewMenuHandler(window fyne.Window, editor *core.Editor, loader *io.ImageLoader, logger logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		window: window,
		editor: editor,
		loader: loader,
		logger: logger,
	}
}

func (mh *MenuHandler) SetCallbacks(onImageLoaded, onImageSaved func(string), onError func(string, error)) {
	mh.onImageLoaded = onImageLoaded
	mh.onImageSaved = onImageSaved
	mh.onError = onError
}

func (mh *MenuHandler) SetEditActions(actions EditActions) {
	mh.actions = actions
}

var (
	shortcutOpen = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	shortcutSave = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	shortcutUndo = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	shortcutRedo = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
)

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...  (Ctrl+O)", mh.openImage),
		fyne.NewMenuItem("Save Image...  (Ctrl+S)", mh.saveImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", func() {
			mh.window.Close()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Apply Adjustments", func() { call(mh.actions.Commit) }),
		fyne.NewMenuItem("Undo  (Ctrl+Z)", func() { call(mh.actions.Undo) }),
		fyne.NewMenuItem("Redo  (Ctrl+Y)", func() { call(mh.actions.Redo) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Crop", func() { call(mh.actions.ToggleCrop) }),
		fyne.NewMenuItem("Reset to Original", func() { call(mh.actions.Reset) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, helpMenu)
}

// RegisterShortcuts binds Ctrl+O, Ctrl+S, Ctrl+Z and Ctrl+Y on the window canvas.
func (mh *MenuHandler) RegisterShortcuts() {
	c := mh.window.Canvas()
	c.AddShortcut(shortcutOpen, func(fyne.Shortcut) { mh.openImage() })
	c.AddShortcut(shortcutSave, func(fyne.Shortcut) { mh.saveImage() })
	c.AddShortcut(shortcutUndo, func(fyne.Shortcut) { call(mh.actions.Undo) })
	c.AddShortcut(shortcutRedo, func(fyne.Shortcut) { call(mh.actions.Redo) })
}

func (mh *MenuHandler) openImage() {
	mh.logger.Info("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		if err := mh.LoadPath(path); err != nil {
			mh.showError("Failed to Load Image", err)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(io.SupportedExtensions()))
	fileDialog.Show()
}

// LoadPath decodes the file and starts a new editing session with it.
func (mh *MenuHandler) LoadPath(path string) error {
	buf, err := mh.loader.LoadFile(path)
	if err != nil {
		return err
	}
	if err := mh.editor.Load(buf); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	if mh.onImageLoaded != nil {
		mh.onImageLoaded(path)
	}
	return nil
}

// saveImage writes the committed image; uncommitted adjustments are not saved.
func (mh *MenuHandler) saveImage() {
	current := mh.editor.Current()
	if current == nil {
		mh.showError("No Image", core.ErrNoImage)
		return
	}

	mh.logger.Info("Opening file dialog for image saving")

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		hint := writer.URI().Extension()
		if hint == "" {
			hint = ".png"
		}
		data, err := mh.loader.Encode(current, hint)
		if err != nil {
			mh.showError("Failed to Save Image", err)
			return
		}
		if _, err := writer.Write(data); err != nil {
			mh.showError("Failed to Save Image", err)
			return
		}

		path := writer.URI().Path()
		mh.logger.WithFields(logrus.Fields{
			"filepath": path,
			"size":     current.Dimensions(),
			"bytes":    len(data),
		}).Info("Image saved successfully")
		if mh.onImageSaved != nil {
			mh.onImageSaved(path)
		}
	}, mh.window)

	fileDialog.SetFileName("edited.png")
	fileDialog.SetFilter(storage.NewExtensionFileFilter(io.SupportedExtensions()))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	dialog.ShowInformation("About",
		"CV Image Editor\n\nRotate, flip, adjust, filter, crop and resize\nwith full undo/redo history.",
		mh.window)
}

func (mh *MenuHandler) showError(title string, err error) {
	if mh.onError != nil {
		mh.onError(title, err)
		return
	}
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(err, mh.window)
}
