package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/food-assistant/pkg/pipeline/measure"
)

const toolPrefix = "tool:"

// DOTDrawer draws the data flow of a pipeline in the graphviz DOT language.
type DOTDrawer struct {
	graph    graph.Graph[string, string]
	order    []string
	fileName string
}

// NewDOTDrawer creates a new DOT drawer writing to fileName on Draw.
func NewDOTDrawer(fileName string) *DOTDrawer {
	return &DOTDrawer{
		fileName: fileName,
		graph:    graph.New(graph.StringHash, graph.Directed()),
	}
}

func (d *DOTDrawer) addVertex(name string, attrs ...func(*graph.VertexProperties)) error {
	err := d.graph.AddVertex(name, attrs...)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}
	d.order = append(d.order, name)

	return nil
}

// AddStep adds a step to the pipeline graph.
func (d *DOTDrawer) AddStep(name string) error {
	return d.addVertex(name, graph.VertexAttribute("shape", "ellipse"))
}

// AddTool adds a tool node linked to the step using it.
func (d *DOTDrawer) AddTool(stepName, toolName string) error {
	vertex := toolPrefix + toolName
	if _, err := d.graph.Vertex(vertex); errors.Is(err, graph.ErrVertexNotFound) {
		err := d.addVertex(vertex, graph.VertexAttribute("shape", "box"), graph.VertexAttribute("style", "dashed"))
		if err != nil {
			return err
		}
	}

	err := d.graph.AddEdge(stepName, vertex, graph.EdgeAttribute("style", "dashed"))
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", stepName, vertex)
	}

	return nil
}

// AddLink adds a link between two steps. Several slots between the same steps share one edge.
func (d *DOTDrawer) AddLink(parentName, childName, slot string) error {
	edge, err := d.graph.Edge(parentName, childName)
	if errors.Is(err, graph.ErrEdgeNotFound) {
		err = d.graph.AddEdge(parentName, childName, graph.EdgeAttribute("label", slot))
		if err != nil {
			return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
		}

		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "unable to get edge from %s to %s", parentName, childName)
	}

	label := edge.Properties.Attributes["label"]
	if label != "" {
		label += ", "
	}
	err = d.graph.UpdateEdge(parentName, childName, graph.EdgeAttribute("label", label+slot))
	if err != nil {
		return errors.Wrap(err, "unable to update edge")
	}

	return nil
}

// SetTotalTime sets the total time for the step.
func (d *DOTDrawer) SetTotalTime(stepName string, total time.Duration) error {
	_, properties, err := d.graph.VertexWithProperties(stepName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stepName)
	}

	properties.Attributes["xlabel"] = "total: " + total.String()

	return nil
}

const maxRGB = 240

// AddMeasure labels every step with its mean duration and colours it from blue (fastest) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()

	var minValue, maxValue time.Duration
	first := true
	for name, mt := range metrics {
		if _, err := d.graph.Vertex(name); err != nil || mt.AVGDuration() == 0 {
			continue
		}
		avg := mt.AVGDuration()
		if first || avg < minValue {
			minValue = avg
		}
		if first || avg > maxValue {
			maxValue = avg
		}
		first = false
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, properties, err := d.graph.VertexWithProperties(name)
		if errors.Is(err, graph.ErrVertexNotFound) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		mt := metrics[name]
		avg := mt.AVGDuration()
		if avg == 0 {
			continue
		}

		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(avg-minValue) / float64(maxValue-minValue)
		}
		red := maxRGB * fraction
		blue := maxRGB - red
		colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		xlabel := "avg: " + avg.String()
		if failures := mt.Failures(); failures > 0 {
			xlabel += fmt.Sprintf(", failed: %d", failures)
		}
		properties.Attributes["xlabel"] = xlabel
		properties.Attributes["color"] = colour.ToHEX().String()

		for tool, info := range mt.AllTools() {
			err := d.graph.UpdateEdge(name, toolPrefix+tool,
				graph.EdgeAttribute("style", "dashed"),
				graph.EdgeAttribute("label", fmt.Sprintf("%d calls, %s", info.Calls, info.AVGDuration())),
				graph.EdgeAttribute("fontcolor", "blue"),
			)
			if err != nil && !errors.Is(err, graph.ErrEdgeNotFound) {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = d.Render(file)
	if err != nil {
		return errors.Wrapf(err, "unable to write dot file %s", d.fileName)
	}

	return nil
}

const dotTemplate = `strict digraph {
	rankdir="LR";
{{- range .Statements}}
{{- if .Target}}
	"{{.Source}}" -> "{{.Target}}" [ {{range .Attributes}}{{.Key}}="{{.Value}}", {{end}}weight={{.Weight}} ];
{{- else}}
	"{{.Source}}" [ {{with .HTMLLabel}}label={{.}}, {{end}}{{range .Attributes}}{{.Key}}="{{.Value}}", {{end}}weight={{.Weight}} ];
{{- end}}
{{- end}}
}
`

type attribute struct {
	Key   string
	Value string
}

type statement struct {
	Source     string
	Target     string
	HTMLLabel  string
	Attributes []attribute
	Weight     int
}

func sortedAttributes(attrs map[string]string, skip string) []attribute {
	out := make([]attribute, 0, len(attrs))
	for k, v := range attrs {
		if k == skip {
			continue
		}
		out = append(out, attribute{Key: k, Value: strings.ReplaceAll(v, `"`, `\"`)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})

	return out
}

func (d *DOTDrawer) statements() ([]statement, error) {
	adjacencyMap, err := d.graph.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get adjacency map")
	}

	var stmts []statement
	for _, vertex := range d.order {
		_, properties, err := d.graph.VertexWithProperties(vertex)
		if err != nil {
			return nil, errors.Wrap(err, "unable to get vertex properties")
		}

		stmt := statement{
			Source:     vertex,
			Weight:     properties.Weight,
			Attributes: sortedAttributes(properties.Attributes, "xlabel"),
		}
		if xlabel, ok := properties.Attributes["xlabel"]; ok {
			stmt.HTMLLabel = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)
		}
		stmts = append(stmts, stmt)

		targets := make([]string, 0, len(adjacencyMap[vertex]))
		for target := range adjacencyMap[vertex] {
			targets = append(targets, target)
		}
		sort.Slice(targets, func(i, j int) bool {
			return d.position(targets[i]) < d.position(targets[j])
		})
		for _, target := range targets {
			edge := adjacencyMap[vertex][target]
			stmts = append(stmts, statement{
				Source:     vertex,
				Target:     target,
				Weight:     edge.Properties.Weight,
				Attributes: sortedAttributes(edge.Properties.Attributes, ""),
			})
		}
	}

	return stmts, nil
}

func (d *DOTDrawer) position(vertex string) int {
	for i, v := range d.order {
		if v == vertex {
			return i
		}
	}

	return len(d.order)
}

// Render writes the DOT description of the graph.
func (d *DOTDrawer) Render(w io.Writer) error {
	stmts, err := d.statements()
	if err != nil {
		return err
	}

	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(w, struct{ Statements []statement }{stmts})
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
