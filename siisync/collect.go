package siisync

// Element names of the DTE envelope as produced by the scraper.
const (
	envelopeContainerKey = "SetDTE"
	envelopeDocumentKey  = "DTE"
	documentWrapperKey   = "Documento"
	documentHeaderKey    = "Encabezado"
)

// CollectDocuments walks a parsed envelope and returns its document nodes in
// source order. The DTE child may be a single node or a list (markup makes no
// difference between one and many); both shapes come back as a flat slice.
// A missing container is an empty result, not an error. Children without a
// Documento/Encabezado pair are dropped silently.
func CollectDocuments(envelope map[string]interface{}) []map[string]interface{} {
	container := findContainer(envelope)
	if container == nil {
		return nil
	}

	var children []interface{}
	switch v := container[envelopeDocumentKey].(type) {
	case []interface{}:
		children = v
	case nil:
		return nil
	default:
		children = []interface{}{v}
	}

	out := make([]map[string]interface{}, 0, len(children))
	for _, child := range children {
		node, ok := child.(map[string]interface{})
		if !ok {
			continue
		}
		wrapper, ok := node[documentWrapperKey].(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := wrapper[documentHeaderKey].(map[string]interface{}); !ok {
			continue
		}
		out = append(out, node)
	}
	return out
}

// The container sits either at the top level of the parsed map or one level
// down inside the root element (EnvioDTE and friends).
func findContainer(envelope map[string]interface{}) map[string]interface{} {
	if set, ok := envelope[envelopeContainerKey].(map[string]interface{}); ok {
		return set
	}
	for _, v := range envelope {
		if root, ok := v.(map[string]interface{}); ok {
			if set, ok := root[envelopeContainerKey].(map[string]interface{}); ok {
				return set
			}
		}
	}
	return nil
}
