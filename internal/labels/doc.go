// Package labels defines the behavior vocabulary shared by every
// classification layer.
//
// A label is a Base class paired with the Layer that produced it. Streams
// carry a single layer, so a Layer2 stream can never hold a Resistant value
// and rendered strings ("Layer2_Walk", "Resistant_Freeze") are produced and
// parsed only through the layer's own prefix. Converting between layers is
// always an explicit Rebase.
package labels
