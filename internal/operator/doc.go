// Package operator defines operator descriptors, the registry of elementwise
// operator schemas, their kernels, shape and type inference and gradient
// makers, and a small Net builder.
//
// An OperatorDef names an operator type, its input and output blobs and its
// arguments. Create validates a descriptor against the registered Schema:
//
//	def, err := operator.Create("Add", []string{"A", "B"}, []string{"C"},
//		operator.Arg("broadcast", 1))
//
// Binary arithmetic, comparison and bitwise operators broadcast NumPy style by
// default. With broadcast=1 they use the legacy rule: B must match a
// contiguous block of A's dimensions starting at axis (default: right
// aligned), and the result has A's shape.
//
// Gradient operators are named "<Type>Gradient" and write "<blob>_grad" blobs.
package operator
