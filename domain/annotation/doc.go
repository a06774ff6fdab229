// Package annotation is the interactive canvas core: the viewport that maps
// between image pixels and the zoomed display, the editor that turns pointer
// events into box creation, dragging and resizing, and the codec for the
// normalised "<class> <xc> <yc> <w> <h>" label format.
//
// Box coordinates are always image pixels. Screen coordinates only appear at
// the pointer entry points and in the handle/draw rectangles used for
// rendering.
package annotation
