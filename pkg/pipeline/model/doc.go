// Package model provides the data structures shared by the pipeline package and its options.
// It defines the description of each step, the description of a run and its status,
// and the hooks a pipeline option implements to observe construction and execution.
package model
