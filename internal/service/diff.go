package service

import "github.com/google/uuid"

// paire is a line present in both the stored and the requested line set.
type paire[A, N any] struct {
	ancienne A
	nouvelle N
}

// diffLignes partitions two line sets keyed by article: removed lines,
// kept lines (old and new side by side) and inserted lines. Both sets must
// name each article at most once. Output order follows the input order.
type diffLignes[A, N any] struct {
	supprimees []A
	conservees []paire[A, N]
	ajoutees   []N
}

func diffParArticle[A, N any](anciennes []A, nouvelles []N, cleA func(A) uuid.UUID, cleN func(N) uuid.UUID) diffLignes[A, N] {
	var d diffLignes[A, N]
	parArticle := make(map[uuid.UUID]int, len(nouvelles))
	for i, n := range nouvelles {
		parArticle[cleN(n)] = i
	}
	gardees := make(map[uuid.UUID]bool, len(anciennes))
	for _, a := range anciennes {
		if i, ok := parArticle[cleA(a)]; ok {
			d.conservees = append(d.conservees, paire[A, N]{ancienne: a, nouvelle: nouvelles[i]})
			gardees[cleA(a)] = true
			continue
		}
		d.supprimees = append(d.supprimees, a)
	}
	for _, n := range nouvelles {
		if !gardees[cleN(n)] {
			d.ajoutees = append(d.ajoutees, n)
		}
	}
	return d
}
