package provision

// Artifact is a pretrained model snapshot pulled from the hub.
type Artifact struct {
	// Name is the short handle used on the command line.
	Name string `json:"name"`

	// RepoID is the hub repository, "owner/name".
	RepoID string `json:"repo_id"`

	// Dir is the local directory, relative to the provisioner root unless absolute.
	Dir string `json:"dir"`
}

const (
	ArtifactMangaOCR = "manga-ocr"
	ArtifactKokoro   = "kokoro"
)

// DefaultArtifacts returns the OCR and text-to-speech snapshots in pull order.
func DefaultArtifacts() []Artifact {
	return []Artifact{
		{Name: ArtifactMangaOCR, RepoID: "kha-white/manga-ocr-base", Dir: "models/manga-ocr"},
		{Name: ArtifactKokoro, RepoID: "hexgrad/Kokoro-82M", Dir: "kokoro"},
	}
}

// Lookup finds a default artifact by name.
func Lookup(name string) (Artifact, bool) {
	for _, a := range DefaultArtifacts() {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Names returns the names of the default artifacts.
func Names() []string {
	artifacts := DefaultArtifacts()
	names := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		names = append(names, a.Name)
	}
	return names
}
