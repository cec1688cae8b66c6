package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/slbench/depthcast/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian" or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	// Indices of the x, y, z properties within VertexProps
	PositionIndices [3]int
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the mesh data loaded from a PLY file: vertex positions
// and triangulated face indices (3 per triangle). All other per-vertex
// properties are skipped over; depth casting only needs geometry.
type PLYData struct {
	Vertices []core.Vec3
	Faces    []int
}

// Triangles expands the indexed faces into per-triangle vertex triples
func (d *PLYData) Triangles() [][3]core.Vec3 {
	triangles := make([][3]core.Vec3, 0, len(d.Faces)/3)
	for i := 0; i+2 < len(d.Faces); i += 3 {
		triangles = append(triangles, [3]core.Vec3{
			d.Vertices[d.Faces[i]],
			d.Vertices[d.Faces[i+1]],
			d.Vertices[d.Faces[i+2]],
		})
	}
	return triangles
}

// LoadPLY loads a PLY mesh file and returns its vertex and face data.
// ASCII and binary little-endian formats are supported; faces with more
// than three indices are fan-triangulated.
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening PLY file")
	}
	defer file.Close()

	header, headerSize, err := parsePLYHeader(file)
	if err != nil {
		return nil, errors.Wrap(err, "parsing PLY header")
	}

	if _, err := file.Seek(int64(headerSize), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to PLY data")
	}

	var data *PLYData
	switch header.Format {
	case "binary_little_endian":
		data, err = readBinaryLittleEndian(file, header)
	case "ascii":
		data, err = readASCII(file, header)
	default:
		return nil, errors.Errorf("unsupported PLY format: %s", header.Format)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading PLY data")
	}

	return data, nil
}

// parsePLYHeader parses the PLY header and returns header info and the byte
// offset where element data starts
func parsePLYHeader(file *os.File) (*PLYHeader, int, error) {
	header := &PLYHeader{
		VertexProps:     make([]PLYProperty, 0),
		FaceProps:       make([]PLYProperty, 0),
		PositionIndices: [3]int{-1, -1, -1},
	}

	scanner := bufio.NewScanner(file)
	var bytesRead int
	var currentElement string
	sawMagic := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		bytesRead += len(scanner.Bytes()) + 1 // +1 for newline

		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "ply":
			sawMagic = true
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
			// Ignore
		case "element":
			if len(parts) >= 3 {
				count, err := strconv.Atoi(parts[2])
				if err != nil {
					return nil, 0, errors.Errorf("invalid element count: %s", parts[2])
				}

				currentElement = parts[1]
				switch currentElement {
				case "vertex":
					header.VertexCount = count
				case "face":
					header.FaceCount = count
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, 0, err
			}

			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				propIndex := len(header.VertexProps) - 1
				switch prop.Name {
				case "x":
					header.PositionIndices[0] = propIndex
				case "y":
					header.PositionIndices[1] = propIndex
				case "z":
					header.PositionIndices[2] = propIndex
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "reading header")
	}
	if !sawMagic {
		return nil, 0, errors.New("missing ply magic number")
	}
	for _, idx := range header.PositionIndices {
		if idx < 0 {
			return nil, 0, errors.New("vertex element is missing x/y/z properties")
		}
	}

	return header, bytesRead, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
	}

	return prop, nil
}

// plyTypeSize returns the size in bytes of a PLY scalar type
func plyTypeSize(plyType string) (int, error) {
	switch plyType {
	case "char", "uchar", "int8", "uint8":
		return 1, nil
	case "short", "ushort", "int16", "uint16":
		return 2, nil
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4, nil
	case "double", "float64":
		return 8, nil
	default:
		return 0, errors.Errorf("unknown PLY type: %s", plyType)
	}
}

// readScalar decodes one little-endian scalar of the given PLY type from b
// and returns it as float64
func readScalar(b []byte, plyType string) float64 {
	switch plyType {
	case "char", "int8":
		return float64(int8(b[0]))
	case "uchar", "uint8":
		return float64(b[0])
	case "short", "int16":
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case "ushort", "uint16":
		return float64(binary.LittleEndian.Uint16(b))
	case "int", "int32":
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case "uint", "uint32":
		return float64(binary.LittleEndian.Uint32(b))
	case "float", "float32":
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case "double", "float64":
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// readBinaryLittleEndian reads binary little-endian vertex and face elements
func readBinaryLittleEndian(file *os.File, header *PLYHeader) (*PLYData, error) {
	reader := bufio.NewReader(file)

	// Vertices: fixed-size records, so compute property offsets once
	offsets := make([]int, len(header.VertexProps))
	vertexSize := 0
	for i, prop := range header.VertexProps {
		if prop.IsList {
			return nil, errors.Errorf("list property %q on vertex element is not supported", prop.Name)
		}
		size, err := plyTypeSize(prop.Type)
		if err != nil {
			return nil, err
		}
		offsets[i] = vertexSize
		vertexSize += size
	}

	vertices := make([]core.Vec3, 0, header.VertexCount)
	record := make([]byte, vertexSize)
	for i := 0; i < header.VertexCount; i++ {
		if _, err := io.ReadFull(reader, record); err != nil {
			return nil, errors.Wrapf(err, "reading vertex %d", i)
		}
		var pos [3]float64
		for axis, propIndex := range header.PositionIndices {
			prop := header.VertexProps[propIndex]
			pos[axis] = readScalar(record[offsets[propIndex]:], prop.Type)
		}
		vertices = append(vertices, core.NewVec3(pos[0], pos[1], pos[2]))
	}

	// Faces: a list property of vertex indices, possibly alongside other
	// face properties we skip over
	faces := make([]int, 0, header.FaceCount*3)
	for i := 0; i < header.FaceCount; i++ {
		indices, err := readBinaryFace(reader, header.FaceProps)
		if err != nil {
			return nil, errors.Wrapf(err, "reading face %d", i)
		}
		faces, err = appendTriangulated(faces, indices, len(vertices))
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", i)
		}
	}

	return &PLYData{Vertices: vertices, Faces: faces}, nil
}

// readBinaryFace reads one face element, returning the vertex index list
func readBinaryFace(reader *bufio.Reader, props []PLYProperty) ([]int, error) {
	var indices []int
	buf := make([]byte, 8)

	for _, prop := range props {
		if !prop.IsList {
			size, err := plyTypeSize(prop.Type)
			if err != nil {
				return nil, err
			}
			if _, err := io.ReadFull(reader, buf[:size]); err != nil {
				return nil, err
			}
			continue
		}

		countSize, err := plyTypeSize(prop.ListType)
		if err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(reader, buf[:countSize]); err != nil {
			return nil, err
		}
		count := int(readScalar(buf, prop.ListType))

		dataSize, err := plyTypeSize(prop.DataType)
		if err != nil {
			return nil, err
		}
		values := make([]int, count)
		for i := 0; i < count; i++ {
			if _, err := io.ReadFull(reader, buf[:dataSize]); err != nil {
				return nil, err
			}
			values[i] = int(readScalar(buf, prop.DataType))
		}

		// The vertex_indices list is the face; other lists are skipped
		if prop.Name == "vertex_indices" || prop.Name == "vertex_index" || indices == nil {
			indices = values
		}
	}

	if indices == nil {
		return nil, errors.New("face element has no index list property")
	}
	return indices, nil
}

// readASCII reads whitespace-separated vertex and face elements
func readASCII(file *os.File, header *PLYHeader) (*PLYData, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	vertices := make([]core.Vec3, 0, header.VertexCount)
	for len(vertices) < header.VertexCount && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < len(header.VertexProps) {
			return nil, errors.Errorf("vertex %d: expected %d values, got %d",
				len(vertices), len(header.VertexProps), len(fields))
		}
		var pos [3]float64
		for axis, propIndex := range header.PositionIndices {
			v, err := strconv.ParseFloat(fields[propIndex], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "vertex %d", len(vertices))
			}
			pos[axis] = v
		}
		vertices = append(vertices, core.NewVec3(pos[0], pos[1], pos[2]))
	}
	if len(vertices) < header.VertexCount {
		return nil, errors.Errorf("expected %d vertices, got %d", header.VertexCount, len(vertices))
	}

	faces := make([]int, 0, header.FaceCount*3)
	read := 0
	for read < header.FaceCount && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", read)
		}
		if len(fields) < count+1 {
			return nil, errors.Errorf("face %d: expected %d indices, got %d", read, count, len(fields)-1)
		}
		indices := make([]int, count)
		for i := 0; i < count; i++ {
			indices[i], err = strconv.Atoi(fields[i+1])
			if err != nil {
				return nil, errors.Wrapf(err, "face %d", read)
			}
		}
		faces, err = appendTriangulated(faces, indices, len(vertices))
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", read)
		}
		read++
	}
	if read < header.FaceCount {
		return nil, errors.Errorf("expected %d faces, got %d", header.FaceCount, read)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &PLYData{Vertices: vertices, Faces: faces}, nil
}

// appendTriangulated fan-triangulates a polygon's index list onto faces,
// bounds-checking every index
func appendTriangulated(faces []int, indices []int, vertexCount int) ([]int, error) {
	if len(indices) < 3 {
		return nil, errors.Errorf("polygon has %d vertices", len(indices))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= vertexCount {
			return nil, errors.Errorf("vertex index %d out of range", idx)
		}
	}
	for i := 1; i+1 < len(indices); i++ {
		faces = append(faces, indices[0], indices[i], indices[i+1])
	}
	return faces, nil
}
