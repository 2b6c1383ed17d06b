// Package chart holds the conventions shared by chart components: the
// margin convention, the sizing capability, and the errors a component
// returns before it renders.
//
// Capabilities are plain interfaces handed to a component when it is built.
// A component asks a [Sized] for its drawable area and a
// [selection.Joiner] for the reconcile operation, so either can be swapped
// without touching the component.
package chart
