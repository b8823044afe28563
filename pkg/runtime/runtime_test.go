package runtime

import "testing"

func TestNewHeapSeedsWellKnownIds(t *testing.T) {
	h := NewHeap()
	for _, id := range []ID{NullID, VoidID, TrueID, FalseID} {
		if _, err := h.GetInstance(id); err != nil {
			t.Errorf("well-known id %d missing: %v", id, err)
		}
	}
	trueObj, _ := h.GetInstance(TrueID)
	if trueObj.InnerValue != true {
		t.Errorf("TrueID InnerValue = %v, want true", trueObj.InnerValue)
	}
	falseObj, _ := h.GetInstance(FalseID)
	if falseObj.InnerValue != false {
		t.Errorf("FalseID InnerValue = %v, want false", falseObj.InnerValue)
	}
}

func TestAddInstanceRoundsNumbersToFourDecimals(t *testing.T) {
	h := NewHeap()
	id := h.AddInstance(ModuleNumber, 1.0/3.0)
	obj, err := h.GetInstance(id)
	if err != nil {
		t.Fatalf("GetInstance: %v", err)
	}
	if obj.InnerValue != 0.3333 {
		t.Errorf("InnerValue = %v, want 0.3333", obj.InnerValue)
	}
}

func TestAddInstanceDefaultsListPayload(t *testing.T) {
	h := NewHeap()
	id := h.AddInstance(ModuleList, nil)
	obj, err := h.GetInstance(id)
	if err != nil {
		t.Fatalf("GetInstance: %v", err)
	}
	list, ok := obj.InnerValue.([]ID)
	if !ok {
		t.Fatalf("InnerValue is %T, want []ID", obj.InnerValue)
	}
	if len(list) != 0 {
		t.Errorf("len(list) = %d, want 0", len(list))
	}
}

func TestGetInstanceUnknownID(t *testing.T) {
	h := NewHeap()
	if _, err := h.GetInstance(ID(999)); err == nil {
		t.Error("expected an error for an unknown id")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	h := NewHeap()
	id := h.AddInstance(ModuleObject, nil)
	obj, _ := h.GetInstance(id)
	obj.Fields["x"] = TrueID

	listID := h.AddInstance(ModuleList, []ID{TrueID})

	clone := h.Clone()
	cloneObj, err := clone.GetInstance(id)
	if err != nil {
		t.Fatalf("clone missing object %d: %v", id, err)
	}
	cloneObj.Fields["x"] = FalseID
	if obj.Fields["x"] != TrueID {
		t.Error("mutating the clone's field map leaked back into the original heap")
	}

	cloneList, _ := clone.GetInstance(listID)
	cloneSlice := cloneList.InnerValue.([]ID)
	cloneSlice[0] = FalseID
	origList, _ := h.GetInstance(listID)
	if origList.InnerValue.([]ID)[0] != TrueID {
		t.Error("mutating the clone's list payload leaked back into the original heap")
	}
}

func TestAddInstanceWithIDAdvancesCounter(t *testing.T) {
	h := NewHeap()
	reserved := h.nextID + 5
	h.AddInstanceWithID(reserved, ModuleObject)
	next := h.AddInstance(ModuleObject, nil)
	if next <= reserved {
		t.Errorf("AddInstance returned %d after AddInstanceWithID(%d, ...), want > %d", next, reserved, reserved)
	}
}
