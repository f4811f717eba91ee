// Package spritesheet loads sprite sheets described by XML descriptors, such
// as the ones shipped with Kenney's 2D asset packs.
//
// A descriptor "ui/sheet.xml" comes with an image "ui/sheet.png". Loading the
// descriptor produces an Asset listing the named regions in document order,
// a handle to the image, and a handle to an atlas.Layout whose rectangle i is
// region i:
//
//	reg := assets.NewRegistry(paths.Dir("assets"))
//	spritesheet.Register(reg)
//	h, err := reg.Load(ctx, "ui/sheet.xml")
//
// Loads are all-or-nothing. Every failure is an *Error whose Kind says which
// stage gave up; nothing is registered for a failed load.
package spritesheet
