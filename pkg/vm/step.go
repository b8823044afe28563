package vm

import (
	"fmt"
	"log"

	"github.com/wollok-vm/core/pkg/ast"
	"github.com/wollok-vm/core/pkg/instruction"
	"github.com/wollok-vm/core/pkg/runtime"
)

// step interprets exactly one instruction from the top frame, mutating
// the evaluation in place (spec §4, Step Executor). It returns a
// non-nil error only for an unrecoverable HostFailure, a
// LanguageException that reached the outermost frame, or an error
// returned by a native, which is passed through unchanged.
func step(eval *Evaluation) error {
	frame := eval.Top()
	if frame == nil {
		return nil
	}
	if frame.exhausted() {
		eval.PopFrame()
		return nil
	}

	instr := frame.current()
	frame.NextInstruction++

	switch instr.Kind {
	case instruction.LOAD:
		id, ok := lookupLocal(eval, instr.Name)
		if !ok {
			return (&HostFailure{Reason: fmt.Sprintf("undefined local %q", instr.Name)}).withSnapshot(eval)
		}
		frame.push(id)

	case instruction.STORE:
		v, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		storeLocal(eval, instr.Name, instr.Lookup, v)

	case instruction.PUSH:
		frame.push(instr.ID)

	case instruction.GET:
		selfID, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		obj, oerr := eval.Heap.GetInstance(selfID)
		if oerr != nil {
			return (&HostFailure{Reason: oerr.Error()}).withSnapshot(eval)
		}
		v, ok := obj.Fields[instr.Name]
		if !ok {
			return (&HostFailure{Reason: (runtime.UndefinedFieldError{ID: selfID, Field: instr.Name}).Error()}).withSnapshot(eval)
		}
		frame.push(v)

	case instruction.SET:
		v, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		selfID, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		obj, oerr := eval.Heap.GetInstance(selfID)
		if oerr != nil {
			return (&HostFailure{Reason: oerr.Error()}).withSnapshot(eval)
		}
		obj.Fields[instr.Name] = v

	case instruction.SWAP:
		n := len(frame.OperandStack)
		if n < 2 {
			return (&HostFailure{Reason: "SWAP on fewer than two operands"}).withSnapshot(eval)
		}
		frame.OperandStack[n-1], frame.OperandStack[n-2] = frame.OperandStack[n-2], frame.OperandStack[n-1]

	case instruction.INSTANTIATE:
		frame.push(eval.Heap.AddInstance(instr.Module, instr.InnerValue))

	case instruction.INHERITS:
		selfID, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		obj, oerr := eval.Heap.GetInstance(selfID)
		if oerr != nil {
			return (&HostFailure{Reason: oerr.Error()}).withSnapshot(eval)
		}
		class, ok := eval.Environment.Resolve(obj.Module)
		if !ok {
			return (&HostFailure{Reason: fmt.Sprintf("unresolved module %q", obj.Module)}).withSnapshot(eval)
		}
		target, ok := eval.Environment.Resolve(instr.Module)
		if !ok {
			return (&HostFailure{Reason: fmt.Sprintf("unresolved module %q", instr.Module)}).withSnapshot(eval)
		}
		if eval.Environment.Inherits(class, target) {
			frame.push(runtime.TrueID)
		} else {
			frame.push(runtime.FalseID)
		}

	case instruction.CONDITIONAL_JUMP:
		c, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		switch c {
		case runtime.TrueID:
			// no-op: fall through to the very next instruction.
		case runtime.FalseID:
			frame.NextInstruction += instr.Offset
			if frame.NextInstruction < 0 || frame.NextInstruction > len(frame.Instructions) {
				return (&HostFailure{Reason: "CONDITIONAL_JUMP target out of bounds"}).withSnapshot(eval)
			}
		default:
			return raiseBadParameter(eval, "CONDITIONAL_JUMP received a non-boolean operand")
		}

	case instruction.CALL:
		args := make([]runtime.ID, instr.Arity)
		for i := instr.Arity - 1; i >= 0; i-- {
			v, err := popFrom(eval, frame)
			if err != nil {
				return err
			}
			args[i] = v
		}
		receiverID, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		return dispatchCall(eval, frame, receiverID, instr.Message, args, instr.LookupStart)

	case instruction.INIT:
		selfID, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		args := make([]runtime.ID, instr.Arity)
		for i := instr.Arity - 1; i >= 0; i-- {
			v, err := popFrom(eval, frame)
			if err != nil {
				return err
			}
			args[i] = v
		}
		return dispatchInit(eval, frame, selfID, instr.LookupStart, args, instr.InitFields)

	case instruction.IF_THEN_ELSE:
		c, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		var chosen instruction.List
		switch c {
		case runtime.TrueID:
			chosen = instr.Then
		case runtime.FalseID:
			chosen = instr.Else
		default:
			return raiseBadParameter(eval, "IF_THEN_ELSE received a non-boolean operand")
		}
		branch := instruction.List{instruction.Push(runtime.VoidID)}
		branch = append(branch, chosen...)
		branch = append(branch, instruction.Interrupt(instruction.Result))
		frame.Resume[instruction.Result] = true
		eval.PushFrame(NewFrame(branch))

	case instruction.TRY_CATCH_ALWAYS:
		pushTryCatchAlways(eval, frame, instr)

	case instruction.INTERRUPT:
		v, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		return interrupt(eval, instr.InterruptionKind, v)

	case instruction.RESUME_INTERRUPTION:
		v, err := popFrom(eval, frame)
		if err != nil {
			return err
		}
		missing, merr := missingResumeKind(frame)
		if merr != nil {
			return merr.(*HostFailure).withSnapshot(eval)
		}
		return interrupt(eval, missing, v)

	default:
		return (&HostFailure{Reason: fmt.Sprintf("unknown instruction kind %v", instr.Kind)}).withSnapshot(eval)
	}

	return nil
}

// popFrom pops from frame, filling in a diagnostic snapshot if the pop
// fails — frame.pop's own HostFailure has no access to the evaluation.
func popFrom(eval *Evaluation, frame *Frame) (runtime.ID, error) {
	id, err := frame.pop()
	if err != nil {
		return 0, err.(*HostFailure).withSnapshot(eval)
	}
	return id, nil
}

// lookupLocal searches the frame stack from innermost to outermost for
// the nearest frame binding name (spec §4.1, LOAD).
func lookupLocal(eval *Evaluation, name string) (runtime.ID, bool) {
	for i := len(eval.FrameStack) - 1; i >= 0; i-- {
		if id, ok := eval.FrameStack[i].Locals[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// storeLocal implements STORE name, lookup (spec §4.1): with lookup
// set, assigns in the nearest frame that already binds name; otherwise
// (or if no such frame exists) declares/overwrites in the current
// frame.
func storeLocal(eval *Evaluation, name string, lookup bool, v runtime.ID) {
	if lookup {
		for i := len(eval.FrameStack) - 1; i >= 0; i-- {
			if _, ok := eval.FrameStack[i].Locals[name]; ok {
				eval.FrameStack[i].Locals[name] = v
				return
			}
		}
	}
	eval.Top().Locals[name] = v
}

// missingResumeKind implements RESUME_INTERRUPTION's kind inference
// (spec §4.6): frame.Resume must have exactly two of the three kinds
// present; the absent one is being re-raised.
func missingResumeKind(frame *Frame) (instruction.InterruptionKind, error) {
	all := [3]instruction.InterruptionKind{instruction.Return, instruction.Exception, instruction.Result}
	var missing []instruction.InterruptionKind
	for _, k := range all {
		if !frame.Resume[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) != 1 {
		return 0, &HostFailure{Reason: fmt.Sprintf("RESUME_INTERRUPTION: resume set has %d of 3 kinds, expected 2", 3-len(missing))}
	}
	return missing[0], nil
}

// interrupt implements the unified interruption mechanism (spec §4.6):
// unwind frames until one resumes kind, then deliver value to it.
func interrupt(eval *Evaluation, kind instruction.InterruptionKind, value runtime.ID) error {
	for {
		top := eval.Top()
		if top == nil {
			if kind == instruction.Exception {
				return raiseUnhandled(eval, value)
			}
			return (&HostFailure{Reason: fmt.Sprintf("unhandled %s", kind)}).withSnapshot(eval)
		}
		if top.Resume[kind] {
			delete(top.Resume, kind)
			top.push(value)
			return nil
		}
		eval.PopFrame()
	}
}

// raiseUnhandled is reached when an exception interruption unwinds
// past the outermost frame (spec §7): it logs the exception's message
// field, if present, before reporting the failure.
func raiseUnhandled(eval *Evaluation, value runtime.ID) error {
	if obj, err := eval.Heap.GetInstance(value); err == nil {
		if msgID, ok := obj.Fields["message"]; ok {
			if msgObj, merr := eval.Heap.GetInstance(msgID); merr == nil {
				if s, ok := msgObj.InnerValue.(string); ok {
					log.Printf("uncaught exception: %s", s)
				}
			}
		}
	}
	return &LanguageException{Value: value}
}

// raiseBadParameter allocates a wollok.lang.BadParameterException with
// the given message and raises it as an exception interruption (spec
// §7: the only exception the VM raises directly).
func raiseBadParameter(eval *Evaluation, reason string) error {
	msgID := eval.Heap.AddInstance(runtime.ModuleString, reason)
	excID := eval.Heap.AddInstance(runtime.ModuleBadParameterError, nil)
	obj, err := eval.Heap.GetInstance(excID)
	if err != nil {
		return (&HostFailure{Reason: err.Error()}).withSnapshot(eval)
	}
	obj.Fields["message"] = msgID
	return interrupt(eval, instruction.Exception, excID)
}

// pushTryCatchAlways wraps a compiled body/catch/always triple into
// the three stacked frames spec §4.5 describes, pushed bottom-to-top:
// always, catch, body.
func pushTryCatchAlways(eval *Evaluation, outer *Frame, instr instruction.Instruction) {
	outer.Resume[instruction.Result] = true

	always := instruction.List{instruction.Store("<previous_interruption>", false)}
	always = append(always, instr.Always...)
	always = append(always, instruction.Load("<previous_interruption>"), instruction.ResumeInterruption())
	alwaysFrame := NewFrame(always)
	alwaysFrame.Resume[instruction.Result] = true
	alwaysFrame.Resume[instruction.Return] = true
	alwaysFrame.Resume[instruction.Exception] = true
	eval.PushFrame(alwaysFrame)

	catch := instruction.List{instruction.Store("<exception>", false)}
	catch = append(catch, instr.Catch...)
	catch = append(catch, instruction.Load("<exception>"), instruction.Interrupt(instruction.Exception))
	catchFrame := NewFrame(catch)
	catchFrame.Resume[instruction.Exception] = true
	eval.PushFrame(catchFrame)

	body := instruction.List{instruction.Push(runtime.VoidID)}
	body = append(body, instr.Body...)
	body = append(body, instruction.Interrupt(instruction.Result))
	eval.PushFrame(NewFrame(body))
}

// dispatchCall implements CALL (spec §4.3).
func dispatchCall(eval *Evaluation, caller *Frame, receiverID runtime.ID, message string, args []runtime.ID, lookupStartFQN string) error {
	receiver, err := eval.Heap.GetInstance(receiverID)
	if err != nil {
		return (&HostFailure{Reason: err.Error()}).withSnapshot(eval)
	}
	class, ok := eval.Environment.Resolve(receiver.Module)
	if !ok {
		return (&HostFailure{Reason: fmt.Sprintf("unresolved module %q", receiver.Module)}).withSnapshot(eval)
	}

	var method *ast.Method
	var found bool
	if lookupStartFQN != "" {
		startClass, ok := eval.Environment.Resolve(lookupStartFQN)
		if !ok {
			return (&HostFailure{Reason: fmt.Sprintf("unresolved lookup start %q", lookupStartFQN)}).withSnapshot(eval)
		}
		method, found = eval.Environment.MethodLookupFrom(message, len(args), class, startClass)
	} else {
		method, found = eval.Environment.MethodLookup(message, len(args), class)
	}

	if !found {
		return dispatchMessageNotUnderstood(eval, caller, class, receiverID, message, args)
	}

	if method.Native {
		native, ok := eval.Natives.Lookup(method.Owner.FullyQualifiedName(), message, len(args))
		if !ok {
			return (&HostFailure{Reason: fmt.Sprintf("no native registered for %s.%s/%d", method.Owner.FullyQualifiedName(), message, len(args))}).withSnapshot(eval)
		}
		resultID, nerr := native(eval, receiverID, args)
		if nerr != nil {
			return nerr
		}
		caller.push(resultID)
		return nil
	}

	locals := bindParams(receiverID, method.Params, method.IsVarargs(), args, eval.Heap)
	caller.Resume[instruction.Return] = true
	eval.PushFrame(WithLocals(methodFrameInstructions(eval, method.Body), locals))
	return nil
}

// dispatchMessageNotUnderstood implements the messageNotUnderstood
// fallback (spec §4.3): invoked when no method matches message/arity.
func dispatchMessageNotUnderstood(eval *Evaluation, caller *Frame, class *ast.Class, receiverID runtime.ID, message string, args []runtime.ID) error {
	method, found := eval.Environment.MethodLookup("messageNotUnderstood", 2, class)
	if !found {
		return (&HostFailure{Reason: fmt.Sprintf("%s does not understand %s/%d", class.FullyQualifiedName(), message, len(args))}).withSnapshot(eval)
	}
	nameID := eval.Heap.AddInstance(runtime.ModuleString, message)
	listID := eval.Heap.AddInstance(runtime.ModuleList, append([]runtime.ID(nil), args...))
	locals := map[string]runtime.ID{"self": receiverID, "name": nameID, "args": listID}

	caller.Resume[instruction.Return] = true
	eval.PushFrame(WithLocals(methodFrameInstructions(eval, method.Body), locals))
	return nil
}

// methodFrameInstructions compiles body and appends the trailing
// PUSH(void), INTERRUPT(return) spec §4.3 requires of every non-native
// method invocation.
func methodFrameInstructions(eval *Evaluation, body *ast.Body) instruction.List {
	out := append(instruction.List{}, eval.Compiler.CompileBody(eval.Environment, body)...)
	out = append(out, instruction.Push(runtime.VoidID), instruction.Interrupt(instruction.Return))
	return out
}

// bindParams binds fixed and/or varargs parameters to locals (spec
// §4.3).
func bindParams(receiverID runtime.ID, params []*ast.Parameter, varargs bool, args []runtime.ID, heap *runtime.Heap) map[string]runtime.ID {
	locals := map[string]runtime.ID{"self": receiverID}
	if varargs {
		fixed := len(params) - 1
		for i := 0; i < fixed; i++ {
			locals[params[i].Name] = args[i]
		}
		tail := append([]runtime.ID(nil), args[fixed:]...)
		locals[params[fixed].Name] = heap.AddInstance(runtime.ModuleList, tail)
		return locals
	}
	for i, p := range params {
		locals[p.Name] = args[i]
	}
	return locals
}

// dispatchInit implements INIT (spec §4.4).
func dispatchInit(eval *Evaluation, caller *Frame, selfID runtime.ID, lookupStartFQN string, args []runtime.ID, initFields bool) error {
	startClass, ok := eval.Environment.Resolve(lookupStartFQN)
	if !ok {
		return (&HostFailure{Reason: fmt.Sprintf("unresolved constructor lookup start %q", lookupStartFQN)}).withSnapshot(eval)
	}
	ctor, found := eval.Environment.ConstructorLookup(len(args), startClass)
	if !found {
		return (&HostFailure{Reason: fmt.Sprintf("no constructor found on %s for arity %d", lookupStartFQN, len(args))}).withSnapshot(eval)
	}

	locals := bindParams(selfID, ctor.Params, ctor.IsVarargs(), args, eval.Heap)

	var instrs instruction.List
	if initFields {
		for _, field := range eval.Environment.AllFields(startClass) {
			instrs = append(instrs, instruction.Load("self"))
			if field.Initializer != nil {
				instrs = append(instrs, eval.Compiler.Compile(eval.Environment, field.Initializer)...)
			} else {
				instrs = append(instrs, instruction.Push(runtime.NullID))
			}
			instrs = append(instrs, instruction.Set(field.Name))
		}
	}

	superclass, hasSuper := eval.Environment.Superclass(startClass)
	// The root class's own trivial constructor has nothing to delegate
	// to: no superclass, and an empty base call means it isn't
	// delegating to a sibling constructor either.
	if hasSuper && (ctor.CallsSuper || len(ctor.BaseCall) == 0) || len(ctor.BaseCall) > 0 {
		for _, arg := range ctor.BaseCall {
			instrs = append(instrs, eval.Compiler.Compile(eval.Environment, arg)...)
		}
		instrs = append(instrs, instruction.Load("self"))
		baseTarget := lookupStartFQN
		if ctor.CallsSuper && hasSuper {
			baseTarget = eval.Environment.FullyQualifiedName(superclass)
		}
		instrs = append(instrs, instruction.Init(len(ctor.BaseCall), baseTarget, false))
	}

	instrs = append(instrs, eval.Compiler.CompileBody(eval.Environment, ctor.Body)...)
	instrs = append(instrs, instruction.Load("self"), instruction.Interrupt(instruction.Return))

	caller.Resume[instruction.Return] = true
	eval.PushFrame(WithLocals(instrs, locals))
	return nil
}
