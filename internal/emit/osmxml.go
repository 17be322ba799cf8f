package emit

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

const generatorVersion = "1.0.0"

type xmlOSM struct {
	XMLName   xml.Name     `xml:"osm"`
	Version   string       `xml:"version,attr"`
	Upload    string       `xml:"upload,attr"`
	Generator string       `xml:"generator,attr"`
	Nodes     []xmlNode    `xml:"node"`
	Ways      []xmlWay     `xml:"way"`
	Relations []xmlRelation `xml:"relation"`
}

type xmlTag struct {
	Key   string `xml:"k,attr"`
	Value string `xml:"v,attr"`
}

type xmlNode struct {
	ID  int64    `xml:"id,attr"`
	Lat string   `xml:"lat,attr"`
	Lon string   `xml:"lon,attr"`
	Tags []xmlTag `xml:"tag"`
}

type xmlWay struct {
	ID   int64    `xml:"id,attr"`
	Refs []xmlRef `xml:"nd"`
	Tags []xmlTag `xml:"tag"`
}

type xmlRef struct {
	Ref int64 `xml:"ref,attr"`
}

type xmlRelation struct {
	ID      int64       `xml:"id,attr"`
	Members []xmlMember `xml:"member"`
	Tags    []xmlTag    `xml:"tag"`
}

type xmlMember struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

func sortedTags(tags map[string]string) []xmlTag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]xmlTag, 0, len(keys))
	for _, k := range keys {
		out = append(out, xmlTag{Key: k, Value: tags[k]})
	}
	return out
}

// WriteOSMXML renders doc as an OSM 0.6 changeset-style document
// (upload="false", so it can be reviewed before import) to w.
func WriteOSMXML(w io.Writer, doc *Document) error {
	root := xmlOSM{
		Version:   "0.6",
		Upload:    "false",
		Generator: fmt.Sprintf("topo2osm v%s", generatorVersion),
	}
	for _, id := range doc.NodeOrder {
		c := doc.Nodes[id]
		root.Nodes = append(root.Nodes, xmlNode{
			ID:   id,
			Lat:  formatCoord(c.Lat),
			Lon:  formatCoord(c.Lon),
			Tags: sortedTags(doc.NodeTags[id]),
		})
	}
	for _, way := range doc.Ways {
		xw := xmlWay{ID: way.ID, Tags: sortedTags(way.Tags)}
		for _, nd := range way.NodeIDs {
			xw.Refs = append(xw.Refs, xmlRef{Ref: nd})
		}
		root.Ways = append(root.Ways, xw)
	}
	for _, rel := range doc.Relations {
		xr := xmlRelation{ID: rel.ID, Tags: sortedTags(rel.Tags)}
		for _, m := range rel.Members {
			xr.Members = append(xr.Members, xmlMember{Type: "way", Ref: m.WayID, Role: m.Role})
		}
		root.Relations = append(root.Relations, xr)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode osm xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.7f", v)
}
