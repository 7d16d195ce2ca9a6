package disk

import "testing"

func TestD64GeometryRoundTrip(t *testing.T) {
	g := newD64Geometry()
	if g.MaxTrack != 35 {
		t.Fatalf("max track = %d, want 35", g.MaxTrack)
	}
	if g.MaxLBA != 683 {
		t.Fatalf("max lba = %d, want 683", g.MaxLBA)
	}
	for track := uint8(1); track <= g.MaxTrack; track++ {
		n, err := g.SectorsInTrack(track)
		if err != nil {
			t.Fatalf("track %d: %v", track, err)
		}
		for sector := uint8(0); sector < n; sector++ {
			lba, err := g.TSToLBA(track, sector)
			if err != nil {
				t.Fatalf("track %d sector %d: %v", track, sector, err)
			}
			gotTrack, gotSector, err := g.LBAToTS(lba)
			if err != nil {
				t.Fatalf("lba %d: %v", lba, err)
			}
			if gotTrack != track || gotSector != sector {
				t.Fatalf("lba %d roundtripped to %d/%d, want %d/%d", lba, gotTrack, gotSector, track, sector)
			}
		}
	}
}

func TestD64GeometrySectorCounts(t *testing.T) {
	g := newD64Geometry()
	cases := []struct {
		track uint8
		want  uint8
	}{
		{1, 21}, {17, 21}, {18, 19}, {24, 19}, {25, 18}, {30, 18}, {31, 17}, {35, 17},
	}
	for _, c := range cases {
		n, err := g.SectorsInTrack(c.track)
		if err != nil {
			t.Fatalf("track %d: %v", c.track, err)
		}
		if n != c.want {
			t.Errorf("track %d: %d sectors, want %d", c.track, n, c.want)
		}
	}
}

func TestD40SectorCountDiffersOnTrack18To24(t *testing.T) {
	g := newD40Geometry()
	n, err := g.SectorsInTrack(20)
	if err != nil {
		t.Fatal(err)
	}
	if n != 20 {
		t.Errorf("d40 track 20: %d sectors, want 20", n)
	}
}

func TestD71MirrorsD64PastTrack35(t *testing.T) {
	g := newD71Geometry()
	if g.MaxTrack != 70 {
		t.Fatalf("max track = %d, want 70", g.MaxTrack)
	}
	n36, err := g.SectorsInTrack(36)
	if err != nil {
		t.Fatal(err)
	}
	n1, err := g.SectorsInTrack(1)
	if err != nil {
		t.Fatal(err)
	}
	if n36 != n1 {
		t.Errorf("track 36 sectors = %d, want mirror of track 1 (%d)", n36, n1)
	}
}

func TestGeometryOutOfRangeErrors(t *testing.T) {
	g := newD64Geometry()
	if _, err := g.SectorsInTrack(36); err == nil {
		t.Error("expected error for track past MaxTrack")
	}
	if _, err := g.SectorsInTrack(0); err == nil {
		t.Error("expected error for track 0")
	}
	if _, err := g.TSToLBA(1, 21); err == nil {
		t.Error("expected error for sector past track length")
	}
	if _, _, err := g.LBAToTS(0); err == nil {
		t.Error("expected error for lba 0")
	}
	if _, _, err := g.LBAToTS(g.MaxLBA + 1); err == nil {
		t.Error("expected error for lba past MaxLBA")
	}
}

func TestD81FixedGeometry(t *testing.T) {
	g := newD81Geometry()
	if g.MaxTrack != 80 || g.MaxLBA != 3200 {
		t.Fatalf("d81: max track %d max lba %d, want 80/3200", g.MaxTrack, g.MaxLBA)
	}
	n, err := g.SectorsInTrack(40)
	if err != nil {
		t.Fatal(err)
	}
	if n != 40 {
		t.Errorf("d81 track 40: %d sectors, want 40", n)
	}
}

func TestD80D82Zones(t *testing.T) {
	d80 := newD80Geometry()
	if d80.MaxLBA != 2083 {
		t.Errorf("d80 max lba = %d, want 2083", d80.MaxLBA)
	}
	d82 := newD82Geometry()
	if d82.MaxLBA != 2*2083 {
		t.Errorf("d82 max lba = %d, want %d", d82.MaxLBA, 2*2083)
	}
}
