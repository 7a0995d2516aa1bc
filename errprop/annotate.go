package errprop

// annotate sets the return type label and error flag of every edge.
func annotate(prog *Program, g *Graph) {
	for _, e := range g.Edges {
		if e.Call == nil || e.pkg == nil {
			e.Type, e.IsError = UnknownType, false
			continue
		}
		c := prog.opts.Classifier.Classify(prog.ReturnType(e.pkg, e.Call))
		e.Type = c.Label
		e.IsError = c.IsError
	}
}
