package graph

import "log/slog"

// Stats are counters collected during graph assembly.
type Stats struct {
	Usages              int
	Taxa                int
	Synonyms            int
	BareNames           int
	Roots               int
	References          int
	Attachments         int
	DroppedAttachments  int
	DuplicateIDs        int
	DuplicateReferences int
	ParentCycles        int
	ChainedSynonyms     int
	SynonymParents      int
	BasionymCycles      int
	UnresolvedParents   int
	UnresolvedAccepted  int
	UnresolvedBasionyms int
	InvalidReferenceIDs int
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("usages", s.Usages),
		slog.Int("taxa", s.Taxa),
		slog.Int("synonyms", s.Synonyms),
		slog.Int("bare_names", s.BareNames),
		slog.Int("roots", s.Roots),
		slog.Int("references", s.References),
		slog.Int("attachments", s.Attachments),
		slog.Int("dropped_attachments", s.DroppedAttachments),
		slog.Int("duplicate_ids", s.DuplicateIDs),
		slog.Int("parent_cycles", s.ParentCycles),
		slog.Int("chained_synonyms", s.ChainedSynonyms),
		slog.Int("synonym_parents", s.SynonymParents),
		slog.Int("basionym_cycles", s.BasionymCycles),
		slog.Int("unresolved_parents", s.UnresolvedParents),
		slog.Int("unresolved_accepted", s.UnresolvedAccepted),
		slog.Int("unresolved_basionyms", s.UnresolvedBasionyms),
		slog.Int("invalid_reference_ids", s.InvalidReferenceIDs),
	)
}
