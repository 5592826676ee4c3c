// Package animation provides eased tweens advanced by an external clock.
//
// There is no scheduler here. The host owns the loop and calls Advance
// with the elapsed time each frame; a [Controller] holds at most one
// in-flight [Tween] per kind and a new Start replaces the old one.
package animation
